package nodetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubOwner struct{ id string }

func (s stubOwner) InstanceID() string { return s.id }

func TestBaseSignatureRoundTrips(t *testing.T) {
	sig := Signature{QualifiedName: "lang:if", ExecInputs: []string{"in"}}
	b := &Base{Sig: sig}

	assert.Equal(t, sig, b.Signature())
}

func TestBaseOwnerSetOnce(t *testing.T) {
	b := &Base{}
	assert.Nil(t, b.Owner())

	owner := stubOwner{id: "n1"}
	b.SetOwner(owner)
	assert.Equal(t, owner, b.Owner())
}
