package util

import "strconv"

// ParseID 解析路径中的正整数 ID
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, E(CodeInvalidID, "ParseID", "Invalid ID", err)
	}
	return uint(id), nil
}

// IsDigits 判断字符串是否全部为数字
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
