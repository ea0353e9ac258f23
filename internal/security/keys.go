package security

import (
	"strings"

	"github.com/google/uuid"
)

const keyLen = 20

// Keys produces the unguessable random strings used as activation keys,
// reset keys and generated passwords.
type Keys struct{}

func NewKeys() *Keys {
	return &Keys{}
}

func randomKey() string {
	// two uuids give more than enough entropy for a 20-char key
	raw := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	return raw[:keyLen]
}

func (k *Keys) ActivationKey() string {
	return randomKey()
}

func (k *Keys) ResetKey() string {
	return randomKey()
}

// Password returns the random initial password assigned on admin-create.
// The holder is expected to replace it through the reset flow.
func (k *Keys) Password() string {
	return randomKey()
}
