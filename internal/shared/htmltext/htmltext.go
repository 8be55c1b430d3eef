// Package htmltext はフィード由来のHTML断片を表示用のプレーンテキストに変換します。
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strip はタグを取り除き、エンティティをデコードし、連続する空白を1つにまとめます。
// パースできない場合は入力をそのまま返します。
func Strip(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
