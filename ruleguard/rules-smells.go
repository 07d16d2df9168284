package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two consecutive guards returning the same value are combinable with ||
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// Response bodies must be closed on every path
	m.Match(`$resp, $err := $c.httpClient.Do($req); if $err != nil { $*_ }; $_ := $resp.Body`).
		Report(`check that resp.Body is closed before further reads`)

	// json.NewEncoder(...).Encode on a ResponseWriter after WriteHeader is
	// fine, but Encode before WriteHeader silently sends 200
	m.Match(`json.NewEncoder($w).Encode($v); $w.WriteHeader($code)`).
		Report(`WriteHeader after Encode has no effect; set the status first`)

	// context.Background() inside request handlers detaches cancellation
	m.Match(`func ($h *$_) $name($w http.ResponseWriter, $r *http.Request) { $*_; $_ := context.Background(); $*_ }`).
		Report(`handler creates context.Background(); use r.Context() unless the work must outlive the request`)
}
