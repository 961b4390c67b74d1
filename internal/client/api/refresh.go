package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/botadmin/internal/logging"
)

type refreshReply struct {
	Valid any `json:"valid"`
}

func (r refreshReply) ok() bool {
	switch v := r.Valid.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// awaitRefresh joins the refresh in flight or starts one. It returns nil
// only when the session was renewed. The shared refresh keeps running if
// ctx is cancelled; only this caller stops waiting.
func (c *Client) awaitRefresh(ctx context.Context, log logging.Logger) error {
	ch := c.refresh.DoChan(c.refreshPath, func() (any, error) {
		return nil, c.runRefresh(ctx, log)
	})
	if c.onRefreshWait != nil {
		c.onRefreshWait()
	}

	select {
	case res := <-ch:
		if res.Err == nil {
			log.Info(ctx, "session refreshed, replaying request", "shared", res.Shared)
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runRefresh issues the refresh call on the bare transport, so a 401 from
// the refresh endpoint cannot recurse into another refresh. Failure clears
// the session before any waiter observes the error.
func (c *Client) runRefresh(ctx context.Context, log logging.Logger) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	log.Info(ctx, "refreshing session")

	p, err := c.prepare(&Request{Method: http.MethodPost, Path: c.refreshPath})
	if err != nil {
		return err
	}

	body, err := c.send(ctx, p, uuid.NewString(), log)
	if err != nil {
		log.Warn(ctx, "session refresh failed, logging out", "error", err)
		c.logout(ctx, log)
		return fmt.Errorf("%w: refresh: %w", ErrSessionExpired, err)
	}

	var reply refreshReply
	if err := json.Unmarshal(body, &reply); err != nil || !reply.ok() {
		log.Warn(ctx, "refresh reported an invalid session, logging out")
		c.logout(ctx, log)
		return fmt.Errorf("%w: refresh reported an invalid session", ErrSessionExpired)
	}
	return nil
}

func (c *Client) logout(ctx context.Context, log logging.Logger) {
	if c.session == nil {
		return
	}
	if err := c.session.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Error(ctx, "clear session", "error", err)
	}
}
