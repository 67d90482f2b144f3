// api/service/locker_search.go
package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	ambient_errors "github.com/afekalocker/ambient/api/errors"
	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/policy"
)

const earthRadiusKm = 6371.0

// Scan bounds for the proximity search. Blocks and their lockers are
// scored in memory, so the scans must cover the full candidate sets.
var (
	lockerBlockFetchPage = model.Page{Size: 1000, Page: 0}
	blockChildrenPage    = model.Page{Size: 100, Page: 0}
)

// Defaults applied when the command attributes omit them.
const (
	defaultSearchRadiusKm = 5.0
	defaultSearchPageSize = 20
)

// handleGetAvailableLockers parses the search parameters from the command
// attributes and delegates to the proximity search. Latitude and longitude
// are mandatory; radius and pagination fall back to defaults.
func (s *CommandService) handleGetAvailableLockers(ctx context.Context, cmd *model.Command, actor model.UserID) (interface{}, error) {
	latitude, err := attrFloat(cmd.Attributes, "latitude")
	if err != nil {
		return nil, err
	}
	longitude, err := attrFloat(cmd.Attributes, "longitude")
	if err != nil {
		return nil, err
	}

	radiusKm := defaultSearchRadiusKm
	if _, ok := cmd.Attributes["radius"]; ok {
		if radiusKm, err = attrFloat(cmd.Attributes, "radius"); err != nil {
			return nil, err
		}
	}

	page := model.Page{Size: defaultSearchPageSize, Page: 0}
	if _, ok := cmd.Attributes["size"]; ok {
		size, err := attrFloat(cmd.Attributes, "size")
		if err != nil {
			return nil, err
		}
		page.Size = int(size)
	}
	if _, ok := cmd.Attributes["page"]; ok {
		pageNum, err := attrFloat(cmd.Attributes, "page")
		if err != nil {
			return nil, err
		}
		page.Page = int(pageNum)
	}

	return s.GetAvailableLockersByLocation(ctx, actor, latitude, longitude, radiusKm, page)
}

// GetAvailableLockersByLocation finds locker blocks within radiusKm of the
// given point that have at least one available locker. Each returned block
// carries distanceKm, the projected availableLockers and availableCount in
// its details. Results are ordered by distance, nearest first, with the
// creation order as a stable tie-break, then paginated in memory.
func (s *CommandService) GetAvailableLockersByLocation(ctx context.Context, actor model.UserID, latitude, longitude, radiusKm float64, page model.Page) ([]*model.Object, error) {
	if latitude < -90 || latitude > 90 {
		return nil, fmt.Errorf("%w: latitude must be between -90 and 90", ambient_errors.ErrInvalidInput)
	}
	if longitude < -180 || longitude > 180 {
		return nil, fmt.Errorf("%w: longitude must be between -180 and 180", ambient_errors.ErrInvalidInput)
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", ambient_errors.ErrInvalidInput)
	}

	actingUser, err := s.userService.Login(ctx, actor.SystemID, actor.Email)
	if err != nil {
		return nil, err
	}
	decision, err := policy.Decide(actingUser.Role, policy.OpReadObjects)
	if err != nil {
		return nil, err
	}
	if decision == policy.Deny {
		return nil, fmt.Errorf("%w: cannot retrieve objects", ambient_errors.ErrForbidden)
	}

	blocks, err := s.objectService.SearchByTypeAndStatus(ctx, "lockerBlock", "available", actor, lockerBlockFetchPage)
	if err != nil {
		return nil, err
	}

	matches := make([]*model.Object, 0)
	for _, block := range blocks {
		blockLat, latErr := attrFloat(block.Details, "latitude")
		blockLon, lonErr := attrFloat(block.Details, "longitude")
		if latErr != nil || lonErr != nil {
			// blocks without usable coordinates are silently skipped
			continue
		}

		distance := haversineKm(latitude, longitude, blockLat, blockLon)
		if distance > radiusKm {
			continue
		}

		available, err := s.availableLockersOf(ctx, block, actor)
		if err != nil {
			return nil, err
		}
		if len(available) == 0 {
			continue
		}

		if block.Details == nil {
			block.Details = make(map[string]interface{})
		}
		block.Details["distanceKm"] = distance
		block.Details["availableLockers"] = available
		block.Details["availableCount"] = len(available)
		matches = append(matches, block)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		di := matches[i].Details["distanceKm"].(float64)
		dj := matches[j].Details["distanceKm"].(float64)
		return di < dj
	})

	return paginate(matches, page), nil
}

// availableLockersOf projects the available lockers among a block's direct
// children.
func (s *CommandService) availableLockersOf(ctx context.Context, block *model.Object, actor model.UserID) ([]map[string]interface{}, error) {
	children, err := s.objectService.GetChildren(ctx, block.ID.ID, actor, blockChildrenPage)
	if err != nil {
		return nil, err
	}

	available := make([]map[string]interface{}, 0)
	for _, child := range children {
		if !child.IsActive() || child.Type != "locker" || child.Status != "available" {
			continue
		}
		entry := map[string]interface{}{
			"id":    child.ID.ID,
			"alias": child.Alias,
		}
		if number, ok := child.Details["number"]; ok {
			entry["number"] = number
		}
		if size, ok := child.Details["size"]; ok {
			entry["size"] = size
		}
		available = append(available, entry)
	}
	return available, nil
}

func paginate(objects []*model.Object, page model.Page) []*model.Object {
	if page.Size <= 0 {
		return []*model.Object{}
	}
	start := page.Offset()
	if start >= len(objects) {
		return []*model.Object{}
	}
	end := start + page.Size
	if end > len(objects) {
		end = len(objects)
	}
	return objects[start:end]
}

// haversineKm computes the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
