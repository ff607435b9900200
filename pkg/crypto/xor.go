package crypto

// XOR32 は値に複数のマスクを順に XOR します。
func XOR32(v uint32, masks ...uint32) uint32 {
	for _, m := range masks {
		v ^= m
	}
	return v
}
