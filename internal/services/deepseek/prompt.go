package deepseek

import (
	"encoding/json"
	"sort"
	"strings"
)

// translatePromptTemplate carries the translation instructions sent with
// every chapter. The {} placeholder receives the known-pairs prefix plus the
// raw chapter text. Keep updates centralized here so prompt changes do not
// require hunting through call sites.
const translatePromptTemplate = `请将以下日文内容完整、准确地翻译成中文。
要求：
1. 保持原文段落结构；
2. 不要添加任何解释、注释或额外信息；
3. **仅输出译文，不要输出原文或其他解释；**
4. 注重文章原本的表达，特别是对话需要准确反映语气与人物特点。

{}`

// keywordPromptTemplate asks the model for proper nouns that are new in this
// chapter, one JSON pair per line.
const keywordPromptTemplate = `请根据以下已提取的翻译列表、日文原文和中文译文，
从中找出新的专有名词（日文原文中的人名、地名、招式名、非常见物品名等），以及它们
在译文中的对应中文译名。
要求：
1. 仅输出新的翻译对照，不要重复已提取条目；
2. 输出格式为 JSONL，每行一个，例如:{\"japanese\":\"トウリ\",\"chinese\":\"托莉\"}；
3. **不要添加任何说明、注释或其他额外内容。不要使用markdown格式或使用三引号将json包裹**

已提取的翻译列表:
{existing_pairs}

日文原文:
{japanese_text}

中文译文:
{chinese_text}`

// translationPrompt fills the template with the chapter text, prefixed by
// the known glossary pairs when any exist.
func translationPrompt(text string, known map[string]string) string {
	content := text
	if len(known) > 0 {
		content = "已知翻译对照：" + strings.Join(sortedPairs(known), ", ") + "\n" + text
	}
	return strings.Replace(translatePromptTemplate, "{}", content, 1)
}

// extractionPrompt fills the keyword template with the original text, the
// finished translation, and the pairs already known.
func extractionPrompt(original, translated string, known map[string]string) string {
	existing, _ := json.Marshal(sortedPairs(known))
	replacer := strings.NewReplacer(
		"{existing_pairs}", string(existing),
		"{japanese_text}", original,
		"{chinese_text}", translated,
	)
	return replacer.Replace(keywordPromptTemplate)
}

// sortedPairs renders known glossary entries as "source:target" in sorted
// order so prompts are deterministic.
func sortedPairs(known map[string]string) []string {
	pairs := make([]string, 0, len(known))
	for source, target := range known {
		pairs = append(pairs, source+":"+target)
	}
	sort.Strings(pairs)
	return pairs
}
