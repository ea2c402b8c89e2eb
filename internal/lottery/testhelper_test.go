package lottery

import (
	"fmt"

	"github.com/ichi0g0y/name-picker/internal/types"
)

// GenerateEntries はN件のテスト用エントリを決定論的に生成する。
func GenerateEntries(n int) []types.Entry {
	if n <= 0 {
		return []types.Entry{}
	}

	entries := make([]types.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = GenerateEntry(i)
	}
	return entries
}

// GenerateEntry は1件のテスト用エントリを決定論的に生成する。
func GenerateEntry(index int) types.Entry {
	if index < 0 {
		index = 0
	}
	return types.Entry{
		Name:   fmt.Sprintf("User %03d", index+1),
		Weight: (index % 3) + 1,
	}
}
