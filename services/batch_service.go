package services

import (
	"downtime-tracker/domain"
	"downtime-tracker/repositories"
)

type IBatchService interface {
	StartBatch(machineID int, product string, quantity int) (domain.Batch, error)
	FinishBatch(batchID int) (domain.Batch, error)
}

type BatchService struct {
	batches     repositories.IBatchRepository
	machines    repositories.IMachineRepository
	broadcaster Broadcaster
}

func NewBatchService(batches repositories.IBatchRepository, machines repositories.IMachineRepository,
	broadcaster Broadcaster) IBatchService {
	return &BatchService{batches: batches, machines: machines, broadcaster: broadcaster}
}

func (s *BatchService) StartBatch(machineID int, product string, quantity int) (domain.Batch, error) {
	if _, err := s.machines.GetMachine(machineID); err != nil {
		return domain.Batch{}, err
	}

	batch, err := s.batches.StartBatch(machineID, product, quantity)
	if err != nil {
		return domain.Batch{}, err
	}
	s.broadcaster.BatchStarted(machineID, batch)
	return batch, nil
}

func (s *BatchService) FinishBatch(batchID int) (domain.Batch, error) {
	batch, err := s.batches.FinishBatch(batchID)
	if err != nil {
		return domain.Batch{}, err
	}
	s.broadcaster.BatchFinished(batch.MachineID, batch)
	return batch, nil
}
