package enrich

// candidatePaths are appended to the domain root in this order.
var candidatePaths = []string{"", "/about", "/team", "/about-us", "/our-team"}

// CandidateURLs returns the pages most likely to describe the owner of
// domain, root first. The order is fixed.
func CandidateURLs(domain string) []string {
	if domain == "" {
		return nil
	}
	urls := make([]string, len(candidatePaths))
	for i, p := range candidatePaths {
		urls[i] = "https://" + domain + p
	}
	return urls
}

// attemptedURLs limits the candidates to the first n.
func attemptedURLs(domain string, n int) []string {
	urls := CandidateURLs(domain)
	if n > 0 && n < len(urls) {
		return urls[:n]
	}
	return urls
}
