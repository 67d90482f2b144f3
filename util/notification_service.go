// api/util/notification_service.go

package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	logger "github.com/afekalocker/ambient/api/logging"
)

// LockerNotifier pushes lock-state changes to the external actuator
// (simulator). Calls are best-effort: the persisted locker state is the
// source of truth and the actuator is eventually consistent with it.
type LockerNotifier interface {
	SendLockerStatus(ctx context.Context, lockerID string, isLocked bool) error
}

type NotificationService struct {
	baseURL string
	client  *http.Client
}

var _ LockerNotifier = &NotificationService{}

func NewNotificationService(baseURL string, timeout time.Duration) *NotificationService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NotificationService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SendLockerStatus POSTs the new lock state to the actuator endpoint. The
// caller is expected to log and swallow any returned error.
func (n *NotificationService) SendLockerStatus(ctx context.Context, lockerID string, isLocked bool) error {
	payload := map[string]interface{}{
		"lockerId": lockerID,
		"isLocked": isLocked,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal locker status payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/lockerUpdate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build locker status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send locker status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("actuator rejected locker status update: %s", resp.Status)
	}

	logger.Info("Locker status pushed to actuator",
		zap.String("lockerID", lockerID),
		zap.Bool("isLocked", isLocked))
	return nil
}
