package services

import (
	goerrors "errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
	"downtime-tracker/repositories"
)

func newMachineFixture(t *testing.T) (IMachineService, repositories.IMachineRepository, *recordingBroadcaster) {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	machines := repositories.NewMachineRepository(db)
	broadcaster := &recordingBroadcaster{}
	return NewMachineService(machines, broadcaster), machines, broadcaster
}

func TestMachineService_Update_Status_Broadcasts(t *testing.T) {
	req := require.New(t)

	service, machines, broadcaster := newMachineFixture(t)
	machine, err := machines.CreateMachine("CNC mill 3")
	req.NoError(err)

	updated, err := service.UpdateStatus(machine.ID, domain.MachineStopped)

	req.NoError(err)
	req.Equal(domain.MachineStopped, updated.Status)
	req.Equal([]string{"machine_status_changed"}, broadcaster.calls)
}

func TestMachineService_Report_Stoppage_Stops_And_Announces(t *testing.T) {
	req := require.New(t)

	service, machines, broadcaster := newMachineFixture(t)
	machine, err := machines.CreateMachine("CNC mill 3")
	req.NoError(err)

	updated, err := service.ReportStoppage(machine.ID, "tool breakage", domain.Principal{UserID: 7, Role: domain.RoleOperator})

	req.NoError(err)
	req.Equal(domain.MachineStopped, updated.Status)
	req.Equal([]string{"machine_stopped"}, broadcaster.calls)
}

func TestMachineService_Unknown_Machine_Does_Not_Broadcast(t *testing.T) {
	req := require.New(t)

	service, _, broadcaster := newMachineFixture(t)

	_, err := service.UpdateStatus(999, domain.MachineStopped)
	req.True(goerrors.Is(err, errors.ErrMachineNotFound))

	_, err = service.ReportStoppage(999, "tool breakage", domain.Principal{UserID: 7, Role: domain.RoleOperator})
	req.True(goerrors.Is(err, errors.ErrMachineNotFound))

	req.Empty(broadcaster.calls)
}

func TestMachineService_List_Returns_All_Machines(t *testing.T) {
	req := require.New(t)

	service, machines, _ := newMachineFixture(t)
	_, err := machines.CreateMachine("CNC mill 3")
	req.NoError(err)
	_, err = machines.CreateMachine("Press 1")
	req.NoError(err)

	listed, err := service.ListMachines()

	req.NoError(err)
	req.Len(listed, 2)
}
