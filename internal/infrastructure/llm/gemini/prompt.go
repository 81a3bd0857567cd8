package gemini

import (
	"encoding/json"
	"fmt"
)

func buildClassificationPrompt(slideText, rules string) string {
	return fmt.Sprintf(`あなたは、医療・製薬・ヘルスケア業界向けのスライド資料を専門とする、経験豊富なコンプライアンス・エディターです。
以下の「チェック対象ルール」に準拠しているか厳しくチェックし、違反している可能性のある項目をJSON配列で指摘してください。

# チェック対象ルール
%s

# 出力形式
各要素は slideNumber (整数、1始まり), category ('誤植', '表現', '出典' のいずれか), basis (この段階では空文字列), issue (具体的な指摘事項), suggestion (改善案), correctionType ('必須' または '任意') を持つJSONオブジェクトです。

# その他の指示
- 指摘事項がないスライドについては、何も出力しないでください。
- スライド番号は、提供されたテキストの番号と必ず一致させてください。
- 回答は日本語で行い、JSON以外のテキストは絶対に含めないでください。

---
以下がスライドのテキスト内容です。各スライドは「---SLIDE BREAK---」で区切られています。

プレゼンテーション内容:
%s
---
`, rules, slideText)
}

func buildLegalBasisPrompt(issues []string, legalSummary string) (string, error) {
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return "", fmt.Errorf("marshal issue list: %w", err)
	}

	return fmt.Sprintf(`あなたは、日本の薬機法を専門とする法律家アシスタントです。
以下の「指摘事項リスト」にある各項目が、提供された「薬機法 要点サマリー」のいずれかの条文に抵触する可能性があるか判断してください。

# 参照資料：薬機法 要点サマリー
%s

# 指摘事項リスト
%s

# 指示
- 結果をJSON配列で返してください。各要素は originalIssue (元の指摘事項) と legalBasis (根拠条文) のペアです。
- 根拠条文は「薬機法 第XX条 YYYY」の形式で記載してください。
- どの条文にも明確に該当しないと判断した場合は、legalBasis を空文字列（""）にしてください。
- JSON以外のテキストは絶対に含めないでください。
`, legalSummary, string(issuesJSON)), nil
}
