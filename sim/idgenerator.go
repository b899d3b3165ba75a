package sim

import (
	"github.com/rs/xid"
)

// An IDGenerator generates unique IDs for events and messages.
type IDGenerator interface {
	// Generate returns a new unique ID.
	Generate() string
}

var idGeneratorInstance IDGenerator

// GetIDGenerator returns the process-wide ID generator.
func GetIDGenerator() IDGenerator {
	if idGeneratorInstance == nil {
		idGeneratorInstance = &xidGenerator{}
	}
	return idGeneratorInstance
}

type xidGenerator struct{}

func (g *xidGenerator) Generate() string {
	return xid.New().String()
}
