package model

import "time"

// ObjectID is the composite identifier of a generic object.
type ObjectID struct {
	SystemID string `json:"systemID"`
	ID       string `json:"id"`
}

func (id ObjectID) String() string {
	return id.SystemID + "/" + id.ID
}

// Object is a generically-typed entity in the graph: a locker, a locker
// block, a reservation, or any future type. Domain-specific keys inside
// Details (latitude, longitude, isLocked, lockerId, number, size) are
// interpreted only by the handlers that know them, never validated here.
type Object struct {
	ID                ObjectID               `json:"objectID"`
	Type              string                 `json:"type"`
	Alias             string                 `json:"alias"`
	Status            string                 `json:"status"`
	Active            *bool                  `json:"active"`
	CreationTimestamp time.Time              `json:"creationTimestamp"`
	CreatedBy         *UserID                `json:"createdBy,omitempty"`
	Details           map[string]interface{} `json:"objectDetails,omitempty"`

	// ParentID is a single weak back-reference to another object's local
	// id. The store is authoritative; there is no in-memory back-pointer
	// and deleting a parent does not cascade.
	ParentID string `json:"-"`
}

// IsActive treats an unset flag as inactive.
func (o *Object) IsActive() bool {
	return o.Active != nil && *o.Active
}

// ObjectPatch is the update payload for an object. Type, alias and status
// are mandatory on update; Active and Details replace the stored values
// only when present.
type ObjectPatch struct {
	Type    string                 `json:"type"`
	Alias   string                 `json:"alias"`
	Status  string                 `json:"status"`
	Active  *bool                  `json:"active,omitempty"`
	Details map[string]interface{} `json:"objectDetails,omitempty"`
}

// Page is an offset-based pagination request: elements
// [Page*Size, Page*Size+Size) of the ordered, filtered sequence.
// Out-of-range pages yield an empty result, never an error.
type Page struct {
	Size int
	Page int
}

func (p Page) Offset() int {
	return p.Page * p.Size
}

// ObjectFilter narrows a FindAll query. The zero value matches everything.
// Alias, AliasPattern, Type/Status and ParentID are mutually independent;
// the store applies whichever fields are set.
type ObjectFilter struct {
	Alias        string
	AliasPattern string
	Type         string
	Status       string
	ParentID     string
}
