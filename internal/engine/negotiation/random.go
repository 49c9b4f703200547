package negotiation

import "math/rand"

// Randomizer выбирает победителя при споре нескольких claim
type Randomizer interface {
	// Intn возвращает равномерно распределенное число из [0, n)
	Intn(n int) int
}

// MathRandomizer Randomizer поверх math/rand
type MathRandomizer struct{}

func (MathRandomizer) Intn(n int) int {
	return rand.Intn(n)
}
