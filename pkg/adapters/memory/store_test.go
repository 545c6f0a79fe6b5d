package memory_test

import (
	"testing"

	"github.com/epharma/triage/pkg/adapters/memory"
	"github.com/epharma/triage/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, memory.NewStore())
}
