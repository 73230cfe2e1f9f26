package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentUserDefault(t *testing.T) {
	assert.Equal(t, "Usuário Atual", New("").CurrentUser())
	assert.Equal(t, "Fernanda", New("Fernanda").CurrentUser())
}

func TestAssignerRoundRobin(t *testing.T) {
	a := NewAssigner([]string{"João", "Maria", "Carlos"})

	got := []string{a.Next(), a.Next(), a.Next(), a.Next()}
	assert.Equal(t, []string{"João", "Maria", "Carlos", "João"}, got)
}

func TestAssignerDefaultRotation(t *testing.T) {
	a := NewAssigner(nil)
	assert.Equal(t, []string{"João", "Maria", "Carlos"}, a.Rotation())
}

func TestAssignerConcurrent(t *testing.T) {
	a := NewAssigner([]string{"A", "B"})

	done := make(chan string, 100)
	for i := 0; i < 100; i++ {
		go func() { done <- a.Next() }()
	}

	counts := map[string]int{}
	for i := 0; i < 100; i++ {
		counts[<-done]++
	}
	assert.Equal(t, 50, counts["A"])
	assert.Equal(t, 50, counts["B"])
}
