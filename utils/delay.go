package utils

import (
	"math/rand"
	"time"
)

// RandomDelay sleeps for a random duration inside [min, max] so the
// bot's sends look human-paced rather than scripted.
func RandomDelay(min, max time.Duration) {
	time.Sleep(RandomDuration(min, max))
}

// RandomDuration picks a random duration inside [min, max].
func RandomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}
