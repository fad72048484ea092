package gemini

// authenticityPromptFmt instructs the model to decide whether the screenshot
// is a LinkedIn post, whether it belongs to the submitter, and how closely
// the visible post text matches the separately provided content.
const authenticityPromptFmt = `First, if the image UI is not of a LinkedIn post, return {"is_linkedin_post": false} and stop further evaluation.
Analyze the provided image and determine whether it depicts a LinkedIn post. If it does, extract the post's main textual content and compare it to the separately provided content.

---
Separately Provided Post Content:
%s
---

Return your results in the following JSON format:

{
  "is_linkedin_post": true/false,
  "is_own_post": true/false,
  "match_ratio": percentage_match_as_float_between_0_and_1
}

Definitions:
is_linkedin_post: Set to true only if the image clearly shows LinkedIn UI elements, such as the LinkedIn logo, user name with timestamp, profile picture, and post interaction buttons like "Like", "Comment", or "Share".

is_own_post: If is_linkedin_post is true, check if the profile info in the image includes an indicator like "• You" next to the name. If yes, set to true; otherwise, set to false.

match_ratio: After extracting the main textual content of the post (not including profile names, likes/comments, or UI elements), compute the similarity with the separately provided content. Return a float between 0.0 and 1.0 representing the degree of match, where 1.0 means perfect or near-perfect match, ~0.8+ means substantially similar with only minor differences, and lower values indicate progressively less similarity.

Only the final JSON should be returned.`

// ratingPromptFmt is the quality rubric for announcement-time scoring.
const ratingPromptFmt = `I will provide you with the content of a LinkedIn post.
Please evaluate the post on a percentage scale of 1 to 100, based on the following criteria:

Clarity and Readability - Is the content easy to understand and well-structured?

Originality and Authenticity - Does it feel personal and genuine? Does it avoid sounding generic or AI-written?

Relevance - Is the topic relevant to the intended professional audience?

Engagement Potential - Does it invite interaction (comments, reactions, discussion)?

Structure and Formatting - Is it visually readable with short paragraphs, spacing, or bullet points?

Hook / Opening Line - Does it grab attention and make you want to keep reading?

Impact or Takeaway - Does it leave a lasting impression or provide a clear lesson?

Tone and Voice - Is the tone professional, approachable, and consistent with personal branding?

Emotion and Storytelling - Does it include relatable moments, challenges, or emotional insight?

Length - Is it concise but complete, ideally under 300-500 words?

After reading the post, assign a percentage score from 1 (poor) to 100 (excellent) based on overall performance across these criteria.

Here is the LinkedIn post content:
%s`
