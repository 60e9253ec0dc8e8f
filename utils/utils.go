package utils

import (
	rndm "math/rand"
	"strconv"
	"time"
)

var digitRunes = []rune("0123456789")

// GenerateRandomDigitString creates a random numeric string of length n.
func GenerateRandomDigitString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = digitRunes[rndm.Intn(len(digitRunes))]
	}
	return string(b)
}

// NewOrderID generates a human-quotable order id like ORD483920-1171.
func NewOrderID() string {
	return "ORD" + strconv.FormatInt(time.Now().UnixNano()%1e6, 10) + "-" + GenerateRandomDigitString(4)
}
