package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/saferide/dispatch-web/internal/domain/model"
	"github.com/saferide/dispatch-web/internal/observability/metrics"
	"github.com/saferide/dispatch-web/internal/observability/statsd"
	"github.com/saferide/dispatch-web/internal/ports"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client is bound to one session's identity assertion. It performs no retries.
type Client struct {
	base    *url.URL
	http    *http.Client
	token   string
	subject string
	logger  *slog.Logger
	metrics statsd.Sink
}

var _ ports.Backend = (*Client)(nil)

type call struct {
	op     string
	method string
	path   []string
	query  url.Values
	body   any
	out    any
}

func (c *Client) GetShifts(ctx context.Context) ([]model.Shift, error) {
	return getList[model.Shift](ctx, c, "GetShifts", nil, "shifts")
}

func (c *Client) CreateShift(ctx context.Context, req model.CreateShiftRequest) (model.Shift, error) {
	var out model.Shift
	if err := model.Validate(req); err != nil {
		return out, err
	}
	err := c.do(ctx, call{op: "CreateShift", method: http.MethodPost, path: []string{"shifts"}, body: req, out: &out})
	return out, err
}

func (c *Client) GetMyStatus(ctx context.Context) (model.DriverStatus, error) {
	var out model.DriverStatus
	err := c.do(ctx, call{op: "GetMyStatus", method: http.MethodGet, path: []string{"me", "status"}, out: &out})
	return out, err
}

func (c *Client) GoOnline(ctx context.Context, req model.GoOnlineRequest) (model.DriverStatus, error) {
	var out model.DriverStatus
	if err := model.Validate(req); err != nil {
		return out, err
	}
	err := c.do(ctx, call{op: "GoOnline", method: http.MethodPost, path: []string{"me", "status", "online"}, body: req, out: &out})
	return out, err
}

func (c *Client) GoOffline(ctx context.Context) (model.DriverStatus, error) {
	var out model.DriverStatus
	err := c.do(ctx, call{op: "GoOffline", method: http.MethodPost, path: []string{"me", "status", "offline"}, out: &out})
	return out, err
}

func (c *Client) GetMyTasks(ctx context.Context) ([]model.Task, error) {
	return getList[model.Task](ctx, c, "GetMyTasks", nil, "me", "tasks")
}

func (c *Client) CompleteTask(ctx context.Context, taskID string) (model.Task, error) {
	var out model.Task
	if err := model.ValidateID("taskId", taskID); err != nil {
		return out, err
	}
	err := c.do(ctx, call{op: "CompleteTask", method: http.MethodPost, path: []string{"tasks", taskID, "complete"}, out: &out})
	return out, err
}

func (c *Client) AcceptTransfer(ctx context.Context, transferID string) (model.Transfer, error) {
	var out model.Transfer
	if err := model.ValidateID("transferId", transferID); err != nil {
		return out, err
	}
	err := c.do(ctx, call{op: "AcceptTransfer", method: http.MethodPost, path: []string{"transfers", transferID, "accept"}, out: &out})
	return out, err
}

func (c *Client) GetVans(ctx context.Context) ([]model.Van, error) {
	return getList[model.Van](ctx, c, "GetVans", nil, "vans")
}

func (c *Client) CreateWalkOn(ctx context.Context, req model.WalkOnRequest) (model.Ride, error) {
	var out model.Ride
	if err := model.Validate(req); err != nil {
		return out, err
	}
	err := c.do(ctx, call{op: "CreateWalkOn", method: http.MethodPost, path: []string{"walk-ons"}, body: req, out: &out})
	return out, err
}

func (c *Client) GetMembers(ctx context.Context, filter model.MemberFilter) ([]model.Member, error) {
	if err := model.Validate(filter); err != nil {
		return nil, err
	}
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Role != "" {
		q.Set("role", filter.Role)
	}
	return getList[model.Member](ctx, c, "GetMembers", q, "members")
}

func (c *Client) UpdateMemberRole(ctx context.Context, memberID string, req model.UpdateMemberRoleRequest) (model.Member, error) {
	var out model.Member
	if err := model.ValidateID("memberId", memberID); err != nil {
		return out, err
	}
	if err := model.Validate(req); err != nil {
		return out, err
	}
	err := c.do(ctx, call{op: "UpdateMemberRole", method: http.MethodPatch, path: []string{"members", memberID}, body: req, out: &out})
	return out, err
}

func (c *Client) RemoveMember(ctx context.Context, memberID string) error {
	if err := model.ValidateID("memberId", memberID); err != nil {
		return err
	}
	return c.do(ctx, call{op: "RemoveMember", method: http.MethodDelete, path: []string{"members", memberID}})
}

func (c *Client) CreateRide(ctx context.Context, req model.CreateRideRequest) (model.Ride, error) {
	var out model.Ride
	if err := model.Validate(req); err != nil {
		return out, err
	}
	err := c.do(ctx, call{op: "CreateRide", method: http.MethodPost, path: []string{"rides"}, body: req, out: &out})
	return out, err
}

func (c *Client) CancelRide(ctx context.Context, rideID string, req model.CancelRideRequest) (model.Ride, error) {
	var out model.Ride
	if err := model.ValidateID("rideId", rideID); err != nil {
		return out, err
	}
	if err := model.Validate(req); err != nil {
		return out, err
	}
	err := c.do(ctx, call{op: "CancelRide", method: http.MethodPost, path: []string{"rides", rideID, "cancel"}, body: req, out: &out})
	return out, err
}

func (c *Client) GetDomains(ctx context.Context) ([]model.Domain, error) {
	return getList[model.Domain](ctx, c, "GetDomains", nil, "domains")
}

// getList fetches a JSON array, normalizing a null body to an empty slice.
func getList[T any](ctx context.Context, c *Client, op string, q url.Values, path ...string) ([]T, error) {
	var out []T
	if err := c.do(ctx, call{op: op, method: http.MethodGet, path: path, query: q, out: &out}); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, cl call) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, cl)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
		c.logger.WarnContext(ctx, "backend call failed",
			"op", cl.op, "status", status, "subject", c.subject, "error", err, "cause", errors.Unwrap(err))
	}
	metrics.EmitBackendCall(c.metrics, metrics.BackendCall{
		Op: cl.op, Result: result, Status: status, Duration: time.Since(start), Err: err,
	})
	return err
}

func (c *Client) roundTrip(ctx context.Context, cl call) (int, error) {
	segs := make([]string, len(cl.path))
	for i, p := range cl.path {
		segs[i] = url.PathEscape(p)
	}
	u := c.base.JoinPath(segs...)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return 0, &Error{Op: cl.op, Message: "could not encode request", Err: err}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return 0, &Error{Op: cl.op, Message: "could not build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &Error{Op: cl.op, Message: "dispatch service unavailable", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &Error{
			Op:      cl.op,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, raw),
			Err:     fmt.Errorf("%s %s: status %d", cl.method, u.Path, resp.StatusCode),
		}
	}

	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, &Error{Op: cl.op, Status: resp.StatusCode, Message: "invalid response from dispatch service", Err: err}
	}
	return resp.StatusCode, nil
}
