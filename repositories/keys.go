package repositories

import (
	goerrors "errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// nextID increments a per-entity counter inside the caller's transaction, so
// id allocation commits atomically with the row it identifies.
func nextID(txn *badger.Txn, entity string) (int, error) {
	key := []byte("seq:" + entity)

	var current int
	item, err := txn.Get(key)
	switch {
	case goerrors.Is(err, badger.ErrKeyNotFound):
		current = 0
	case err != nil:
		return 0, err
	default:
		err = item.Value(func(val []byte) error {
			current, err = strconv.Atoi(string(val))
			return err
		})
		if err != nil {
			return 0, err
		}
	}

	next := current + 1
	if err := txn.Set(key, []byte(strconv.Itoa(next))); err != nil {
		return 0, err
	}
	return next, nil
}

func userKey(id int) []byte            { return []byte(fmt.Sprintf("user:%d", id)) }
func userEmailKey(email string) []byte { return []byte("user_email:" + email) }
func machineKey(id int) []byte         { return []byte(fmt.Sprintf("machine:%d", id)) }
func ticketKey(id int) []byte          { return []byte(fmt.Sprintf("ticket:%d", id)) }
func batchKey(id int) []byte           { return []byte(fmt.Sprintf("batch:%d", id)) }
func sessionKey(id string) []byte      { return []byte("session:" + id) }
