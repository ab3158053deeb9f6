package postgres

// PostgreSQL のエラーコード。制約違反はコアのセンチネルエラーへ変換します。
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}
