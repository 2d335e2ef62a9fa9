package ports

import (
	"context"

	"github.com/saferide/dispatch-web/internal/domain/model"
)

// Backend is the identity-scoped dispatch API surface. A value is bound to a
// single session and must not outlive the request that created it.
type Backend interface {
	GetShifts(ctx context.Context) ([]model.Shift, error)
	CreateShift(ctx context.Context, req model.CreateShiftRequest) (model.Shift, error)

	GetMyStatus(ctx context.Context) (model.DriverStatus, error)
	GoOnline(ctx context.Context, req model.GoOnlineRequest) (model.DriverStatus, error)
	GoOffline(ctx context.Context) (model.DriverStatus, error)

	GetMyTasks(ctx context.Context) ([]model.Task, error)
	CompleteTask(ctx context.Context, taskID string) (model.Task, error)
	AcceptTransfer(ctx context.Context, transferID string) (model.Transfer, error)

	GetVans(ctx context.Context) ([]model.Van, error)
	CreateWalkOn(ctx context.Context, req model.WalkOnRequest) (model.Ride, error)

	GetMembers(ctx context.Context, filter model.MemberFilter) ([]model.Member, error)
	UpdateMemberRole(ctx context.Context, memberID string, req model.UpdateMemberRoleRequest) (model.Member, error)
	RemoveMember(ctx context.Context, memberID string) error

	CreateRide(ctx context.Context, req model.CreateRideRequest) (model.Ride, error)
	CancelRide(ctx context.Context, rideID string, req model.CancelRideRequest) (model.Ride, error)

	GetDomains(ctx context.Context) ([]model.Domain, error)
}
