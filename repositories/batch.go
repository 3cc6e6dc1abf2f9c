package repositories

import (
	"time"

	"github.com/dgraph-io/badger/v4"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
)

type IBatchRepository interface {
	StartBatch(machineID int, product string, quantity int) (domain.Batch, error)
	GetBatch(id int) (domain.Batch, error)
	FinishBatch(id int) (domain.Batch, error)
}

type BatchRepository struct {
	db *badger.DB
}

func NewBatchRepository(db *badger.DB) IBatchRepository {
	return &BatchRepository{db: db}
}

func (b *BatchRepository) StartBatch(machineID int, product string, quantity int) (domain.Batch, error) {
	batch := domain.Batch{
		MachineID: machineID,
		Product:   product,
		Quantity:  quantity,
		StartedAt: time.Now(),
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		id, err := nextID(txn, "batch")
		if err != nil {
			return err
		}
		batch.ID = id
		return putJSON(txn, batchKey(id), batch)
	})
	if err != nil {
		return domain.Batch{}, err
	}
	return batch, nil
}

func (b *BatchRepository) GetBatch(id int) (domain.Batch, error) {
	var batch domain.Batch
	err := b.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, batchKey(id), &batch, errors.ErrBatchNotFound)
	})
	return batch, err
}

func (b *BatchRepository) FinishBatch(id int) (domain.Batch, error) {
	var batch domain.Batch
	err := b.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, batchKey(id), &batch, errors.ErrBatchNotFound); err != nil {
			return err
		}
		if batch.FinishedAt == nil {
			now := time.Now()
			batch.FinishedAt = &now
		}
		return putJSON(txn, batchKey(id), batch)
	})
	if err != nil {
		return domain.Batch{}, err
	}
	return batch, nil
}
