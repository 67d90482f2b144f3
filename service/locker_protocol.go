// api/service/locker_protocol.go
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	ambient_errors "github.com/afekalocker/ambient/api/errors"
	logger "github.com/afekalocker/ambient/api/logging"
	"github.com/afekalocker/ambient/api/model"
)

// handleChangeLockerStatus toggles a locker's lock state after proving the
// caller holds a valid reservation for exactly that locker. Every guard
// failure is a Forbidden: the caller learns nothing about why the toggle
// was refused.
func (s *CommandService) handleChangeLockerStatus(ctx context.Context, cmd *model.Command, actor model.UserID) (interface{}, error) {
	lockerID, err := targetObjectID(cmd)
	if err != nil {
		return nil, err
	}

	locker, err := s.objectService.GetObjectByID(ctx, lockerID, actor)
	if err != nil {
		return nil, err
	}
	if !locker.IsActive() || !strings.EqualFold(locker.Type, "locker") {
		return nil, fmt.Errorf("%w: access denied", ambient_errors.ErrForbidden)
	}

	reservationID, err := attrString(cmd.Attributes, "reservationId")
	if err != nil {
		return nil, err
	}

	reservation, err := s.objectService.GetObjectByID(ctx, reservationID, actor)
	if err != nil {
		return nil, err
	}
	if !reservation.IsActive() || !strings.EqualFold(reservation.Type, "reservation") {
		return nil, fmt.Errorf("%w: access denied", ambient_errors.ErrForbidden)
	}

	reservedLocker, ok := reservation.Details["lockerId"]
	if !ok || fmt.Sprintf("%v", reservedLocker) != lockerID {
		return nil, fmt.Errorf("%w: access denied", ambient_errors.ErrForbidden)
	}

	current, ok := locker.Details["isLocked"]
	currentLocked, isBool := current.(bool)
	if !ok || !isBool {
		return nil, fmt.Errorf("%w: locker status must be 'locked' or 'unlocked'", ambient_errors.ErrForbidden)
	}

	newLocked := !currentLocked
	locker.Details["isLocked"] = newLocked

	// Persisted state is authoritative; the actuator push is best-effort.
	if err := s.notifier.SendLockerStatus(ctx, lockerID, newLocked); err != nil {
		logger.Warn("Failed to notify locker actuator",
			zap.Error(err),
			zap.String("lockerID", lockerID),
			zap.Bool("isLocked", newLocked))
	}

	patch := &model.ObjectPatch{
		Type:    locker.Type,
		Alias:   locker.Alias,
		Status:  locker.Status,
		Active:  locker.Active,
		Details: locker.Details,
	}
	if err := s.objectService.UpdateObject(ctx, lockerID, actor, patch, true); err != nil {
		return nil, err
	}

	logger.Info("Locker status changed",
		zap.String("lockerID", lockerID),
		zap.String("reservationID", reservationID),
		zap.Bool("isLocked", newLocked))
	return locker, nil
}

// reservationFetchPage bounds the reservation scan. Reservations are
// filtered by owner in memory, so the scan page must cover the full set.
var reservationFetchPage = model.Page{Size: 1000, Page: 0}

// handleGetReservationsByStatus projects the reservations owned by the
// user named in the attributes, narrowed to the given status (default
// "active").
func (s *CommandService) handleGetReservationsByStatus(ctx context.Context, cmd *model.Command, actor model.UserID) (interface{}, error) {
	email, err := attrString(cmd.Attributes, "email")
	if err != nil {
		return nil, err
	}
	systemID, err := attrString(cmd.Attributes, "systemID")
	if err != nil {
		return nil, err
	}

	status := "active"
	if v, ok := cmd.Attributes["status"]; ok {
		if str := strings.TrimSpace(fmt.Sprintf("%v", v)); str != "" {
			status = str
		}
	}

	target := model.UserID{SystemID: systemID, Email: email}
	if _, err := s.userService.Login(ctx, systemID, email); err != nil {
		return nil, err
	}

	reservations, err := s.objectService.SearchByTypeAndStatus(ctx, "reservation", status, actor, reservationFetchPage)
	if err != nil {
		return nil, err
	}

	projected := make([]map[string]interface{}, 0)
	for _, reservation := range reservations {
		if reservation.CreatedBy == nil || !reservation.CreatedBy.Equals(target) {
			continue
		}
		entry := map[string]interface{}{
			"reservationId":     reservation.ID.ID,
			"status":            reservation.Status,
			"creationTimestamp": reservation.CreationTimestamp,
		}
		for k, v := range reservation.Details {
			entry[k] = v
		}
		projected = append(projected, entry)
	}

	return projected, nil
}
