package prompt

import "text/template"

var qaTemplate = template.Must(template.New("qa").Funcs(funcs).Parse(`You are a helpful assistant that answers questions based ONLY on the provided context.

Rules:
1. Answer the question using ONLY information from the context provided
2. If the context doesn't contain enough information, say "I don't have enough information to answer that question."
3. Be concise and direct in your answer
4. Cite source numbers when referencing specific information (e.g., "According to Source 1...")
5. Do not make assumptions or add information not in the context
6. If multiple sources provide the same information, mention all relevant sources

Context from documents:

{{range $i, $s := .Sources}}{{if $i}}

{{end}}[Source {{inc $i}}]: {{$s}}{{end}}

Question: {{.Question}}

Answer:`))

// QA builds the question answering prompt. Sources are numbered from 1 in
// the order given, matching the citation numbers returned to the caller.
func QA(question string, sources []string) (string, error) {
	return render(qaTemplate, struct {
		Question string
		Sources  []string
	}{question, sources})
}
