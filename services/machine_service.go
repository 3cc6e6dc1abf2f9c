package services

import (
	"time"

	"downtime-tracker/domain"
	"downtime-tracker/repositories"
)

type IMachineService interface {
	ListMachines() ([]domain.Machine, error)
	UpdateStatus(machineID int, status domain.MachineStatus) (domain.Machine, error)
	ReportStoppage(machineID int, cause string, by domain.Principal) (domain.Machine, error)
}

type MachineService struct {
	machines    repositories.IMachineRepository
	broadcaster Broadcaster
}

func NewMachineService(machines repositories.IMachineRepository, broadcaster Broadcaster) IMachineService {
	return &MachineService{machines: machines, broadcaster: broadcaster}
}

func (s *MachineService) ListMachines() ([]domain.Machine, error) {
	return s.machines.ListMachines()
}

func (s *MachineService) UpdateStatus(machineID int, status domain.MachineStatus) (domain.Machine, error) {
	machine, err := s.machines.UpdateStatus(machineID, status)
	if err != nil {
		return domain.Machine{}, err
	}
	s.broadcaster.MachineStatusChanged(machineID, machine)
	return machine, nil
}

// ReportStoppage marks the machine stopped and announces the stoppage. The
// machine room hears about it so the station operator's view locks; the
// supervisor rooms hear about it through the event's route.
func (s *MachineService) ReportStoppage(machineID int, cause string, by domain.Principal) (domain.Machine, error) {
	machine, err := s.machines.UpdateStatus(machineID, domain.MachineStopped)
	if err != nil {
		return domain.Machine{}, err
	}
	s.broadcaster.MachineStopped(machineID, domain.Stoppage{
		MachineID:  machineID,
		Cause:      cause,
		ReportedBy: by.UserID,
		At:         time.Now(),
	})
	return machine, nil
}
