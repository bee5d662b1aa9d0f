package driver

// IsDuplicateKey reports whether err is a unique constraint violation
// raised by any of the supported drivers
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return isSQLiteDuplicateKey(err) || isMySQLDuplicateKey(err) || isPostgresDuplicateKey(err)
}
