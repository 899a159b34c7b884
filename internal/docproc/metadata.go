package docproc

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/parser"
)

// Industries recognized in document text, in match priority order.
var Industries = []string{"生物医药", "电子信息", "人工智能", "新能源", "先进制造", "集成电路", "汽车", "文创"}

// Regions recognized in document text, in match priority order.
var Regions = []string{"北京", "上海", "广州", "深圳", "杭州", "南京", "成都", "武汉", "西安"}

// ExtractMetadata derives counts, title, industry and region from text.
// The title is the first level-1 Markdown heading, else filename.
func ExtractMetadata(text, filename string) model.Metadata {
	title := parser.FirstHeading(text)
	if title == "" {
		title = filename
	}
	return model.Metadata{
		WordCount:      len(strings.Fields(text)),
		CharacterCount: utf8.RuneCountInString(text),
		Title:          title,
		Industry:       firstContained(text, Industries),
		Region:         firstContained(text, Regions),
	}
}

func firstContained(text string, vocab []string) string {
	for _, v := range vocab {
		if strings.Contains(text, v) {
			return v
		}
	}
	return ""
}
