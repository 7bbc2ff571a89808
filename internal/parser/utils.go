package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeColumnName 見出しを比較用に正規化する
// NFKC で全角英数・半角カナを揃えてから空白（全角スペース含む）を除く
// 例: " 住所１ " -> "住所1", "ＦＡＸ番号" -> "FAX番号", "ﾌﾘｶﾞﾅ" -> "フリガナ"
func NormalizeColumnName(name string) string {
	name = norm.NFKC.String(name)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}

// normalizeAll 見出しリストをまとめて正規化する
func normalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeColumnName(n)
	}
	return out
}

// ContainsAny 見出し集合にいずれかのキーが含まれるか
func ContainsAny(headers map[string]struct{}, keys []string) []string {
	var matched []string
	for _, k := range keys {
		if _, ok := headers[k]; ok {
			matched = append(matched, k)
		}
	}
	return matched
}

func headerSet(headers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if h == "" {
			continue
		}
		set[h] = struct{}{}
	}
	return set
}

// cellValue 行からセル値を取り出す（範囲外は空文字）
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
