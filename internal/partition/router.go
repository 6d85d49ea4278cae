package partition

import "fmt"

// Count is the number of partitions. Every possible first key byte has one.
const Count = 256

// Route returns the partition that owns key: the value of its first byte.
// The empty key routes to partition 0; the engine only uses it as an open
// lower range bound.
func Route(key []byte) int {
	if len(key) == 0 {
		return 0
	}
	return int(key[0])
}

// FileName returns the log file name of partition id: two lowercase hex digits.
func FileName(id int) string {
	return fmt.Sprintf("%02x", id)
}
