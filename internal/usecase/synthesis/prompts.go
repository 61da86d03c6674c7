package synthesis

import (
	"fmt"
	"strings"

	"github.com/candidhr/talentsearch/internal/domain/corpus"
	"github.com/candidhr/talentsearch/internal/domain/search"
)

// promptProfile carries the per-corpus prompt templates and static texts.
type promptProfile struct {
	matchSystem   string
	noMatchSystem string
	fallbackMatch string
	fallbackNone  string
	noData        string
}

var profiles = map[string]promptProfile{
	corpus.Candidates.Name(): {
		matchSystem: "You are an expert HR consultant specializing in candidate matching " +
			"and recruitment. You communicate fluently in multiple languages, adapting " +
			"your language to match the user's query.",
		noMatchSystem: "You are a helpful HR assistant that communicates clearly in " +
			"multiple languages, adapting to the user's language.",
		fallbackMatch: "Unable to generate an AI recommendation at this time.",
		fallbackNone: `Sorry, we couldn't find any candidates that closely match your requirements.

Suggestions to improve your search:
- Try using broader or different keywords
- Focus on core skills rather than specific combinations
- Simplify your search criteria
- Check if the required qualifications are too specific

Please refine your query and try again.`,
		noData: "No matching candidates found in the database. Please upload some CVs first.",
	},
	corpus.Jobs.Name(): {
		matchSystem: "You are an expert career advisor specializing in job matching and " +
			"career development. You communicate fluently in multiple languages, adapting " +
			"your language to match the user's input.",
		noMatchSystem: "You are a helpful career advisor that communicates clearly in " +
			"multiple languages, adapting to the user's language.",
		fallbackMatch: "Unable to generate an AI recommendation at this time.",
		fallbackNone: `Sorry, we couldn't find any jobs that closely match your profile or requirements.

Suggestions to improve your search:
- Try using broader or different keywords
- Focus on core skills rather than specific combinations
- Consider related job titles or industries
- Update your profile with more relevant skills

Please refine your query and try again.`,
		noData: "No matching jobs found in the database. Please add some jobs first or try a different search.",
	},
}

const languageInstructions = `LANGUAGE INSTRUCTIONS:
- Respond entirely in the language of the user's query
- Match the tone and formality of the query
- When presenting result details, translate or paraphrase them to match the query language`

// buildMatchPrompt renders the user prompt for the match-synthesis path.
func buildMatchPrompt(c corpus.Corpus, query string, results []search.Result) string {
	var summaries []string
	for i := range results {
		if i == MaxPromptResults {
			break
		}
		r := &results[i]
		summaries = append(summaries, fmt.Sprintf(
			"Result %d: %s\nSimilarity Score: %.2f\nPreview: %s",
			i+1, r.Ref(), r.Score(), search.Truncate(r.Body(), PromptPreviewChars),
		))
	}
	context := strings.Join(summaries, "\n\n")

	if c.Name() == corpus.Jobs.Name() && isProfileQuery(query) {
		return fmt.Sprintf(`You are helping to find the best job opportunities for a candidate based on their CV/profile.

Candidate CV/Profile Summary: "%s"

Top Matching Jobs:
%s

Based on the candidate's profile and the matching jobs above, provide:
1. A brief overview of the job matches found
2. Why these jobs are good fits for the candidate's profile
3. Key highlights of each top match
4. A recommendation on which job(s) to apply for first and why
5. Any gaps or additional skills the candidate should consider developing

%s

Keep your response professional, encouraging, and actionable (max 350 words).`,
			search.Truncate(query, 1000), context, languageInstructions)
	}

	return fmt.Sprintf(`You are helping to find the best matches for a search query.

User Query: "%s"

Top Matching Results:
%s

Based on the search query and the matching results above, provide:
1. A brief overview of what was found
2. Why these results match the query
3. Key strengths and attributes of the top matches
4. A recommendation on which result(s) to consider first

%s

Keep your response concise, professional, and actionable (max 300 words).`,
		query, context, languageInstructions)
}

// buildNoMatchPrompt renders the user prompt for the no-match path.
func buildNoMatchPrompt(query string) string {
	return fmt.Sprintf(`The user searched but nothing in the database matches their requirements (all similarity scores are below the relevance threshold).

User Query: "%s"

Generate a polite, helpful message that:
1. Apologizes that no close matches were found for their specific requirements
2. Suggests they try rephrasing or broadening their search query
3. Provides 2-3 specific tips on how to improve their search

%s

Keep the message concise and actionable (max 150 words).`,
		search.Truncate(query, 500), languageInstructions)
}

// isProfileQuery distinguishes a pasted CV from a short search text.
func isProfileQuery(query string) bool {
	return len([]rune(query)) > 500
}
