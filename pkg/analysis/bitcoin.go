// Package analysis defines the built-in Bitcoin trading analysis pipeline:
// search -> read -> synthesize -> recommend -> render. Each stage consumes
// the outputs of the stages it declares as context; the final stage emits a
// complete HTML document.
package analysis

import "github.com/zlisto/financial-analyst-bot/pkg/pipeline"

// BitcoinPipeline returns the five-stage analysis pipeline. Adapters are
// attached by the caller.
func BitcoinPipeline() *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Name:        "bitcoin-analysis",
		Description: "Daily Bitcoin market analysis with a buy/sell/hold recommendation",
		Stages: []*pipeline.Stage{
			{
				Name:      "search",
				Role:      "a Google Search Specialist",
				Backstory: "You are an expert at finding the latest news and articles about Bitcoin market trends, price movements, and trading signals.",
				Goal: "Below are the top recent Bitcoin articles from the past 24 hours. " +
					"Review the list and return a formatted list of the articles with titles, sources, dates, and snippets. " +
					"If the list is an error message or reports no results, say so plainly instead of inventing articles.\n\n" +
					"Search results:\n\n{{ .Input }}",
				ExpectedOutput: "A formatted list of recent Bitcoin articles with titles, sources, dates, and snippets",
			},
			{
				Name:      "read",
				Role:      "a financial news analyst specializing in cryptocurrency markets",
				Backstory: "You read articles carefully and extract price movements, market sentiment, key events, trading signals, and expert opinions.",
				Goal: "Read and analyze each article from the search results. For each article extract: " +
					"key price information and movements, market sentiment (bullish, bearish, neutral), " +
					"important events or news, trading signals or indicators mentioned, and expert opinions or predictions. " +
					"Create a concise 2-3 sentence summary per article and combine all summaries into a single document.",
				ExpectedOutput: "A comprehensive summary document with key insights from all articles, including market sentiment and price trends",
				Context:        []string{"search"},
			},
			{
				Name:      "synthesize",
				Role:      "a senior market analyst who synthesizes information from multiple sources",
				Backstory: "You identify patterns, trends, and consensus views across different articles, and highlight conflicting information.",
				Goal: "Synthesize the article summaries into a single coherent market overview. Identify: " +
					"overall market sentiment, key trends and patterns across articles, consensus views versus conflicting opinions, " +
					"the most important factors affecting Bitcoin today, and risk factors or concerns mentioned.",
				ExpectedOutput: "A synthesized market overview highlighting key insights, trends, and patterns from all articles",
				Context:        []string{"read"},
			},
			{
				Name:      "recommend",
				Role:      "an experienced cryptocurrency trading analyst",
				Backstory: "You analyze market sentiment, trends, and news to provide actionable trading advice, and you consider risk factors.",
				Goal: "Based on the synthesized market overview, provide a clear trading recommendation: BUY, SELL, or HOLD. Include: " +
					"the recommendation, a confidence level (High/Medium/Low), key reasons, important risk factors to consider, " +
					"and a suggested action for today's trading. Be decisive and actionable.",
				ExpectedOutput: "A clear trading recommendation (BUY/SELL/HOLD) with reasoning, confidence level, and actionable advice for today",
				Context:        []string{"synthesize"},
			},
			{
				Name:      "render",
				Role:      "a Gen Z web designer who makes financial data look cool",
				Backstory: "You love black and pink color schemes, modern gradients, Gen Z slang, and making boring financial stuff actually interesting.",
				Goal: "Create a complete HTML page with a black background and hot pink accents (#FF1493, #FF69B4) that includes: " +
					"the article titles from the search results, the article summaries, the market synthesis overview, and the final " +
					"trading recommendation displayed prominently. Use modern CSS (gradients, shadows, hover effects), emojis, and a " +
					"fun Gen Z tone. Include the current date and time: {{ .Date }}. " +
					"Return ONLY the complete HTML document, starting with <!DOCTYPE html> and including <html>, <head>, and <body> tags.",
				ExpectedOutput: "A complete, styled HTML document with all analysis data in a black and pink theme",
				Context:        []string{"search", "read", "synthesize", "recommend"},
			},
		},
	}
}
