package services

// Broadcaster is implemented by the real-time subsystem. Services call it
// after their state mutation has committed; a broadcast failure never rolls
// back or blocks the HTTP response that triggered it.
type Broadcaster interface {
	MachineStatusChanged(machineID int, data any)
	MachineStopped(machineID int, data any)
	TicketCreated(data any)
	TicketAssigned(ticketID, technicianID int, data any)
	TicketAccepted(ticketID int, data any)
	TicketClosed(ticketID, machineID int, data any)
	BatchStarted(machineID int, data any)
	BatchFinished(machineID int, data any)
}
