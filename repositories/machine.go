package repositories

import (
	"encoding/json"
	goerrors "errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
)

type IMachineRepository interface {
	CreateMachine(name string) (domain.Machine, error)
	GetMachine(id int) (domain.Machine, error)
	ListMachines() ([]domain.Machine, error)
	UpdateStatus(id int, status domain.MachineStatus) (domain.Machine, error)
}

type MachineRepository struct {
	db *badger.DB
}

func NewMachineRepository(db *badger.DB) IMachineRepository {
	return &MachineRepository{db: db}
}

func (m *MachineRepository) CreateMachine(name string) (domain.Machine, error) {
	machine := domain.Machine{
		Name:      name,
		Status:    domain.MachineRunning,
		UpdatedAt: time.Now(),
	}
	err := m.db.Update(func(txn *badger.Txn) error {
		id, err := nextID(txn, "machine")
		if err != nil {
			return err
		}
		machine.ID = id
		return putJSON(txn, machineKey(id), machine)
	})
	if err != nil {
		return domain.Machine{}, err
	}
	return machine, nil
}

func (m *MachineRepository) GetMachine(id int) (domain.Machine, error) {
	var machine domain.Machine
	err := m.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, machineKey(id), &machine, errors.ErrMachineNotFound)
	})
	return machine, err
}

func (m *MachineRepository) ListMachines() ([]domain.Machine, error) {
	var machines []domain.Machine
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("machine:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var machine domain.Machine
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &machine)
			})
			if err != nil {
				return err
			}
			machines = append(machines, machine)
		}
		return nil
	})
	return machines, err
}

// UpdateStatus performs the read-modify-write inside one transaction so two
// concurrent status changes cannot interleave.
func (m *MachineRepository) UpdateStatus(id int, status domain.MachineStatus) (domain.Machine, error) {
	var machine domain.Machine
	err := m.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, machineKey(id), &machine, errors.ErrMachineNotFound); err != nil {
			return err
		}
		machine.Status = status
		machine.UpdatedAt = time.Now()
		return putJSON(txn, machineKey(id), machine)
	})
	if err != nil {
		return domain.Machine{}, err
	}
	return machine, nil
}

func putJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v any, notFound error) error {
	item, err := txn.Get(key)
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return notFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
