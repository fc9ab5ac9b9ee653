package usecase

import "fmt"

// newReference builds a log reference of the form <prefix>_<user id>_<unique>.
func newReference(idGen IDGenerator, prefix string, userID int64) string {
	return fmt.Sprintf("%s_%d_%s", prefix, userID, idGen.Generate())
}
