package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "param"). Placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":     "invalid type",
		"invalid_type+":    "invalid type: expected {expected}",
		"invalid_format":   "invalid format",
		"invalid_format+":  "invalid format: expected {expected}",
		"invalid_value":    "invalid value",
		"invalid_enum":     "value is not one of the allowed values",
		"invalid_enum+":    "value must be one of {param}",
		"required":         "required property missing",
		"duplicate_key":    "duplicate key",
		"too_small":        "too small",
		"too_small+":       "must be at least {param}",
		"too_big":          "too big",
		"too_big+":         "must be at most {param}",
		"too_short":        "too short",
		"too_short+":       "must contain at least {param} characters",
		"too_long":         "too long",
		"too_long+":        "must contain at most {param} characters",
		"parse_error":      "parse error",
		"truncated":        "truncated",
		"unsupported_type": "unsupported target type",
		"canceled":         "request canceled",
	},
	"ja": {
		"invalid_type":     "型が不正です",
		"invalid_type+":    "型が不正です ({expected} が必要です)",
		"invalid_format":   "形式が不正です",
		"invalid_format+":  "形式が不正です ({expected} が必要です)",
		"invalid_value":    "値が不正です",
		"invalid_enum":     "許可されていない値です",
		"invalid_enum+":    "{param} のいずれかを指定してください",
		"required":         "必須プロパティが不足しています",
		"duplicate_key":    "キーが重複しています",
		"too_small":        "小さすぎます",
		"too_small+":       "{param} 以上にしてください",
		"too_big":          "大きすぎます",
		"too_big+":         "{param} 以下にしてください",
		"too_short":        "短すぎます",
		"too_short+":       "{param} 文字以上にしてください",
		"too_long":         "長すぎます",
		"too_long+":        "{param} 文字以下にしてください",
		"parse_error":      "解析エラー",
		"truncated":        "打ち切られました",
		"unsupported_type": "対応していない型です",
		"canceled":         "リクエストがキャンセルされました",
	},
}

// dictTranslator is the built-in dictionary-based Translator. A code with
// data uses its "+" variant when one exists.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict := dictionaries[t.lang]
	if len(data) > 0 {
		if msg, ok := dict[code+"+"]; ok {
			return expand(msg, data)
		}
	}
	if msg, ok := dict[code]; ok {
		return msg
	}
	return code
}

func expand(msg string, data map[string]string) string {
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
