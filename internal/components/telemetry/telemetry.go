// Package telemetry is how components report what happened to them. Components never log
// directly, they call an API so that tests can assert on the reports with a RecorderAPI.
package telemetry

import "strings"

// API is implemented by SlogAPI, MeterAPI and RecorderAPI.
type API interface {
	// ReportBroken reports a component that failed and lost work because of it: a crawl
	// mode that fell over, a notification that was not delivered, a history that was not
	// saved.
	//
	// The id names the component and the method as `component.method`, all lowercase with
	// dashes inside a method name, ex. `crawler.api-page`. Specifics go in params.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that did not lose work but is worth a look, like a
	// fallback from the api to html paging.
	ReportWarning(id string, params ...any)

	// ReportDebug is ignored unless running verbose.
	ReportDebug(msg string, params ...any)

	// ReportCount reports a point in time count, ex. the records a crawl collected. Counts
	// are samples and should not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, `namespace: id`. Scoping a ScopedAPI again
// nests the namespaces with a dot.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	if scoped, ok := inner.(ScopedAPI); ok {
		return ScopedAPI{
			namespace: scoped.namespace + "." + namespace,
			inner:     scoped.inner,
		}
	}
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	var b strings.Builder
	b.Grow(len(s.namespace) + len(id) + 2)
	b.WriteString(s.namespace)
	b.WriteString(": ")
	b.WriteString(id)
	return b.String()
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
