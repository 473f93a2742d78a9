package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestSummarizeSQL(t *testing.T) {
	cases := []struct {
		sql  string
		want string
	}{
		{"SELECT id, name FROM customers WHERE id = ?", "SELECT customers"},
		{"SELECT COUNT(1) FROM notifications WHERE user_id = ?", "SELECT notifications"},
		{"INSERT INTO documents (id, doc_type) VALUES (?, ?)", "INSERT documents"},
		{"UPDATE notifications SET read = ? WHERE user_id = ?", "UPDATE notifications"},
		{"DELETE FROM document_lines WHERE document_id = ?", "DELETE document_lines"},
		{"SELECT 1", "SELECT"},
		{"", "unknown"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, summarizeSQL(tc.sql), "sql=%q", tc.sql)
	}
}

func TestSummarizeSQLDropsBoundValues(t *testing.T) {
	got := summarizeSQL(`SELECT email FROM customers WHERE tax_id = '20456789012'`)
	assert.Equal(t, "SELECT customers", got)
	assert.NotContains(t, got, "20456789012")
}

func TestQueryLoggerLogMode(t *testing.T) {
	base := NewQueryLogger()
	silenced := base.LogMode(gormlogger.Silent)

	assert.Equal(t, gormlogger.Warn, base.level, "LogMode must not mutate the receiver")
	assert.Equal(t, gormlogger.Silent, silenced.(*QueryLogger).level)
}
