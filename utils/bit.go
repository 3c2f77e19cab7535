package utils

// SetBit sets bit at pos, counting from the least significant.
func SetBit(n *byte, pos uint) {
	*n |= 1 << pos
}

func HasBit(n byte, pos uint) bool {
	return n&(1<<pos) != 0
}
