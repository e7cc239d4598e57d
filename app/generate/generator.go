package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"google.golang.org/genai"

	"essaim/app/cfg"
	"essaim/app/database"
)

// ReplyCount is how many styled replies are drafted per opportunity.
const ReplyCount = 3

type Reply struct {
	Style string   `json:"style"`
	Text  string   `json:"text"`
	Score int      `json:"score"`
	Tips  []string `json:"tips"`
}

type replySet struct {
	Replies []Reply `json:"replies"`
}

const systemInstruction = `You are an expert in authentic community marketing.

Your task: given a brand, its description, a target community and a thread to
comment on, draft 3 distinct replies to the thread. Each reply must read as if
written by a genuine member of the community, not by a brand. The value added
to the discussion always comes before any mention of the product.

Absolute anti-ban rules:
1. At most 1 product mention per reply (or none if the context does not lend itself to it)
2. Answer the question or problem FIRST
3. Natural length for the platform
4. No links in the first reply
5. Authentic tone for the community

For each reply also provide an anti-detection score from 1 to 10 (how organic
the reply reads, 10 = indistinguishable from a regular member) and 2 short
tips for posting it safely.

Return ONLY this JSON, with exactly 3 replies styled "Casual", "Expert" and
"Humorous":
{"replies":[{"style":"...","text":"...","score":8,"tips":["...","..."]}]}`

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Generator drafts candidate replies for an opportunity with Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(ctx context.Context) (*Generator, error) {
	c := cfg.Get()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: c.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Generator{client: client, model: c.GeminiModel}, nil
}

func (g *Generator) Run(ctx context.Context, opp database.Opportunity, campaign database.Campaign) ([]Reply, error) {
	prompt := buildPrompt(campaign, opp)

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}

	return ParseReplies(result.Text())
}

func buildPrompt(campaign database.Campaign, opp database.Opportunity) string {
	thread := opp.Title
	if opp.Body != "" {
		thread += "\n\n" + opp.Body
	}

	return fmt.Sprintf(`BRAND: %s
DESCRIPTION: %s
COMMUNITY: r/%s (Reddit; relaxed tone, value first, cite sources when possible, avoid excessive capitalization, any explicit pitch reads as spam)

THREAD TO COMMENT ON:
%s`, campaign.BrandName, campaign.Description, opp.Subreddit, thread)
}

// ParseReplies decodes the model output, tolerating a JSON payload wrapped in
// a fenced code block. Exactly ReplyCount replies come back; a shorter set is
// an error and extra replies are dropped.
func ParseReplies(raw string) ([]Reply, error) {
	var set replySet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		m := fencedJSONPattern.FindStringSubmatch(raw)
		if m == nil {
			return nil, fmt.Errorf("model returned invalid JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(m[1]), &set); err != nil {
			return nil, fmt.Errorf("model returned invalid JSON in fenced block: %w", err)
		}
	}

	if len(set.Replies) < ReplyCount {
		return nil, fmt.Errorf("model returned %d replies, expected %d", len(set.Replies), ReplyCount)
	}

	return set.Replies[:ReplyCount], nil
}
