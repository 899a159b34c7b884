package llm

import (
	"fmt"
	"strings"

	"github.com/dgallion1/clusterscope/internal/model"
)

// SystemPrompt frames every conversation about industrial clusters.
const SystemPrompt = `You are an AI assistant specializing in industrial cluster development assessment.
You provide detailed analysis and insights about industrial clusters in different regions of China.
Your analysis should be data-driven, objective, and comprehensive.

When answering questions, consider:
1. The current state of the industrial cluster
2. Economic indicators and trends
3. Policy support and government initiatives
4. Talent resources and educational institutions
5. Infrastructure and geographical advantages
6. Innovation capabilities and technological advancement
7. Market potential and competition

Provide quantitative assessments when possible and cite data sources.
When generating visualizations, use clear labels and ensure data accuracy.`

// BuildChatMessages assembles the system prompt, prior turns, retrieved
// context and the new question. history must already fit the token budget.
func BuildChatMessages(history []model.Message, contextText, question string) []model.Message {
	msgs := make([]model.Message, 0, len(history)+2)
	msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: SystemPrompt})
	msgs = append(msgs, history...)

	var sb strings.Builder
	if strings.TrimSpace(contextText) != "" {
		sb.WriteString("Reference material from uploaded documents:\n---\n")
		sb.WriteString(contextText)
		sb.WriteString("\n---\n\n")
	}
	sb.WriteString(question)
	msgs = append(msgs, model.Message{Role: model.RoleUser, Content: sb.String()})
	return msgs
}

// BuildSectionMessages asks for one report section written from a
// conversation transcript.
func BuildSectionMessages(reportTitle string, section model.Section, language string, transcript []model.Message) []model.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Report: %s\nSection: %s (%s)\n", reportTitle, section.Title, section.Type)
	if language == "en" {
		sb.WriteString("Write the section in English.\n")
	} else {
		sb.WriteString("请用中文撰写该章节。\n")
	}
	switch section.Type {
	case model.SectionBulletPoints:
		sb.WriteString("Answer with 3 to 5 bullet points, one per line, each starting with \"- \".\n")
	default:
		sb.WriteString("Answer with one or two concise paragraphs.\n")
	}
	if len(transcript) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, m := range transcript {
			if m.Role == model.RoleSystem {
				continue
			}
			fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
		}
	}
	return []model.Message{
		{Role: model.RoleSystem, Content: SystemPrompt},
		{Role: model.RoleUser, Content: sb.String()},
	}
}
