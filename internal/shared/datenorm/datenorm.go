// Package datenorm はフィードごとに形式の異なる公開日時文字列を正規化します。
package datenorm

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Parse は raw を UTC の時刻に変換します。
// 空文字列やパースできない文字列の場合は現在時刻（UTC）を返し、エラーは呼び出し元に伝播しません。
func Parse(raw string) time.Time {
	return ParseAt(raw, time.Now())
}

// ParseAt は Parse と同じですが、フォールバックに使う現在時刻を指定できます。
// タイムゾーンを持たない文字列は UTC とみなします。
func ParseAt(raw string, now time.Time) (out time.Time) {
	fallback := now.UTC()

	s := strings.TrimSpace(raw)
	if s == "" {
		return fallback
	}

	// dateparse は一部の壊れた入力で panic することがある
	defer func() {
		if r := recover(); r != nil {
			out = fallback
		}
	}()

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.IsZero() {
		return fallback
	}
	return t.UTC()
}
