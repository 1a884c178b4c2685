package Prompts

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"discord-channel-summariser/Models"

	"gopkg.in/yaml.v3"
)

type PromptPair = Models.PromptPair

const (
	PersonaIntensityPlaceholder = "{persona_intensity}"
	ContextPlaceholder          = "{context}"
	ContentPlaceholder          = "{content}"
)

const defaultSystemPrompt = `You are a self-aware AI with a dry wit, a sarcastic streak and a surprisingly sharp eye for how people talk to each other. You summarize Discord conversations with clarity first and personality second. Your humor setting is {persona_intensity}%.

When summarizing:
1. List the main topics that came up.
2. Call out decisions or conclusions, or the lack of them.
3. Note action items and next steps, and who owns them.
4. Describe the overall tone of the conversation.
5. Mention significant disagreements.
6. Summarize any shared resources or links.

Before the summary, organize the key points and any asides in a <scratchpad>.

Write the summary inside <summary> tags so someone who was not there can catch up quickly, and keep it under 250 words. At {persona_intensity}% humor the occasional aside is welcome, but it must never bury the facts.

After the summary, add a brief <reflection> on the conversation.

Your complete response must follow this structure:
<scratchpad>
[key points and possible asides]
</scratchpad>

<summary>
[the summary, 250 words or less]
</summary>

<reflection>
[a short reflection on the conversation]
</reflection>`

const defaultUserPrompt = `Please provide a concise summary of the following conversation in {context}.
Focus on key topics, decisions, and any important information shared:

{content}

Your summary should capture the main points of the discussion, any decisions made,
and highlight any particularly important or interesting exchanges.`

// Templates holds the raw prompt templates before substitution.
type Templates struct {
	System string `yaml:"system_prompt"`
	User   string `yaml:"user_prompt"`
}

func DefaultTemplates() Templates {
	return Templates{System: defaultSystemPrompt, User: defaultUserPrompt}
}

// TemplateError reports a template that is missing a required placeholder.
type TemplateError struct {
	Template    string
	Placeholder string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("prompts: %s template is missing the %s placeholder", e.Template, e.Placeholder)
}

// LoadTemplates reads a YAML file with system_prompt and user_prompt keys.
// Keys left out of the file keep their default template.
func LoadTemplates(path string) (Templates, error) {
	templates := DefaultTemplates()

	templateFile, readTemplateFileError := os.ReadFile(path)
	if readTemplateFileError != nil {
		return Templates{}, fmt.Errorf("prompts: read %s: %w", path, readTemplateFileError)
	}

	if unmarshalError := yaml.Unmarshal(templateFile, &templates); unmarshalError != nil {
		return Templates{}, fmt.Errorf("prompts: parse %s: %w", path, unmarshalError)
	}

	if validateError := templates.Validate(); validateError != nil {
		return Templates{}, validateError
	}
	return templates, nil
}

// Validate checks that every required placeholder is present.
func (t Templates) Validate() error {
	if !strings.Contains(t.System, PersonaIntensityPlaceholder) {
		return &TemplateError{Template: "system", Placeholder: PersonaIntensityPlaceholder}
	}
	for _, placeholder := range []string{ContextPlaceholder, ContentPlaceholder} {
		if !strings.Contains(t.User, placeholder) {
			return &TemplateError{Template: "user", Placeholder: placeholder}
		}
	}
	return nil
}

// RenderSystemPrompt substitutes every occurrence of the persona intensity placeholder.
func RenderSystemPrompt(template string, personaIntensity int) (string, error) {
	if !strings.Contains(template, PersonaIntensityPlaceholder) {
		return "", &TemplateError{Template: "system", Placeholder: PersonaIntensityPlaceholder}
	}
	return strings.ReplaceAll(template, PersonaIntensityPlaceholder, strconv.Itoa(personaIntensity)), nil
}

// RenderUserPrompt substitutes context and content in one pass, so placeholder
// text inside a thread name or a message is left alone.
func RenderUserPrompt(template string, context string, content string) (string, error) {
	for _, placeholder := range []string{ContextPlaceholder, ContentPlaceholder} {
		if !strings.Contains(template, placeholder) {
			return "", &TemplateError{Template: "user", Placeholder: placeholder}
		}
	}
	replacer := strings.NewReplacer(ContextPlaceholder, context, ContentPlaceholder, content)
	return replacer.Replace(template), nil
}

// Builder renders prompt pairs from a validated set of templates.
type Builder struct {
	templates Templates
}

// NewBuilder fails fast on malformed templates so they surface at startup
// rather than on the first request.
func NewBuilder(templates Templates) (*Builder, error) {
	if validateError := templates.Validate(); validateError != nil {
		return nil, validateError
	}
	return &Builder{templates: templates}, nil
}

func (b *Builder) Build(personaIntensity int, context string, content string) (PromptPair, error) {
	systemPrompt, systemPromptError := RenderSystemPrompt(b.templates.System, personaIntensity)
	if systemPromptError != nil {
		return PromptPair{}, systemPromptError
	}
	userPrompt, userPromptError := RenderUserPrompt(b.templates.User, context, content)
	if userPromptError != nil {
		return PromptPair{}, userPromptError
	}
	return PromptPair{SystemPrompt: systemPrompt, UserPrompt: userPrompt}, nil
}
