// api/model/neo4j/graph.go
package ambient_neo4j

// Node Labels
const (
	// LabelObject represents a generic object in the graph (locker,
	// locker block, reservation, or any future type)
	LabelObject = "AmbientObject"

	// LabelUser represents a directory user
	LabelUser = "User"

	// LabelCommand represents a persisted command record
	LabelCommand = "Command"
)

// Relationship Types
const (
	// RelChildOf represents the single weak parent reference between two
	// objects
	RelChildOf = "CHILD_OF"

	// RelInvokedBy represents the relationship between a command record
	// and the user that invoked it
	RelInvokedBy = "INVOKED_BY"
)
