package utils

import "github.com/google/uuid"

// Namespace for deriving point UUIDs from CMS document identifiers.
var pointIDNamespace = uuid.MustParse("5b1f36c8-9d02-4a51-8f7e-3a9cfb6d2e14")

// PointUUID maps a domain document identifier to the UUID-shaped point id
// the vector store requires. The mapping is deterministic: the same input
// always yields the same UUID. Inputs that already are valid UUIDs pass
// through unchanged.
func PointUUID(documentID string) string {
	if uuid.Validate(documentID) == nil {
		return documentID
	}
	return uuid.NewSHA1(pointIDNamespace, []byte(documentID)).String()
}
