package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	urlRegex      = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	emailRegex    = regexp.MustCompile(`\S+@\S+`)
	mentionRegex  = regexp.MustCompile(`@\w+`)
	nonAlphaRegex = regexp.MustCompile(`[^a-zA-Z\s]`)
)

// 短词（长度 <= 2）无论是否停用词都会被丢弃
const minTokenLength = 3

// TextNormalizer 清洗文本，得到用于过滤空行的 clean text。
// 分类器本身使用原始文本
type TextNormalizer struct {
	stopwords       map[string]struct{}
	removeStopwords bool
}

func NewTextNormalizer(removeStopwords bool, custom []string) *TextNormalizer {
	stopwords := make(map[string]struct{}, len(englishStopwords)+len(custom))
	for _, w := range englishStopwords {
		stopwords[w] = struct{}{}
	}
	for _, w := range custom {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stopwords[w] = struct{}{}
		}
	}
	return &TextNormalizer{
		stopwords:       stopwords,
		removeStopwords: removeStopwords,
	}
}

// CleanText 非字符串输入返回空串。
// 顺序：小写、去 URL、去邮箱、去 @提及、去 #、非字母替换为空格、合并空白、去停用词和短词
func (p *TextNormalizer) CleanText(v any) string {
	text, ok := v.(string)
	if !ok || text == "" {
		return ""
	}

	text = strings.ToLower(text)
	text = urlRegex.ReplaceAllString(text, "")
	text = emailRegex.ReplaceAllString(text, "")
	text = mentionRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "#", "")
	text = nonAlphaRegex.ReplaceAllString(text, " ")

	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if len(w) < minTokenLength {
			continue
		}
		if p.removeStopwords {
			if _, stop := p.stopwords[w]; stop {
				continue
			}
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// DisplayText 返回展示和分类用的原始文本：去掉非法 UTF-8 字节并做 NFC 归一化
func (p *TextNormalizer) DisplayText(v any) string {
	text, ok := v.(string)
	if !ok {
		return ""
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return norm.NFC.String(text)
}

// englishStopwords NLTK 英文停用词表
var englishStopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he", "him", "his",
	"himself", "she", "she's", "her", "hers", "herself", "it", "it's", "its", "itself",
	"they", "them", "their", "theirs", "themselves", "what", "which", "who", "whom", "this",
	"that", "that'll", "these", "those", "am", "is", "are", "was", "were", "be",
	"been", "being", "have", "has", "had", "having", "do", "does", "did", "doing",
	"a", "an", "the", "and", "but", "if", "or", "because", "as", "until",
	"while", "of", "at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "to", "from", "up", "down",
	"in", "out", "on", "off", "over", "under", "again", "further", "then", "once",
	"here", "there", "when", "where", "why", "how", "all", "any", "both", "each",
	"few", "more", "most", "other", "some", "such", "no", "nor", "not", "only",
	"own", "same", "so", "than", "too", "very", "s", "t", "can", "will",
	"just", "don", "don't", "should", "should've", "now", "d", "ll", "m", "o",
	"re", "ve", "y", "ain", "aren", "aren't", "couldn", "couldn't", "didn", "didn't",
	"doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't", "haven", "haven't", "isn", "isn't",
	"ma", "mightn", "mightn't", "mustn", "mustn't", "needn", "needn't", "shan", "shan't", "shouldn",
	"shouldn't", "wasn", "wasn't", "weren", "weren't", "won", "won't", "wouldn", "wouldn't",
}
