package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterPipelineMetrics_Idempotent(t *testing.T) {
	RegisterPipelineMetrics()
	RegisterPipelineMetrics()

	if !prometheus.DefaultRegisterer.Unregister(IndexDocuments) {
		t.Fatal("expected index_documents to be registered")
	}
	// restore for other tests in the package
	prometheus.MustRegister(IndexDocuments)
}

func TestPipelineMetrics_Record(t *testing.T) {
	SearchRequestsTotal.WithLabelValues("results").Inc()
	if v := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("results")); v < 1 {
		t.Errorf("expected search_requests_total >= 1, got %f", v)
	}

	IndexDocuments.Set(42)
	if v := testutil.ToFloat64(IndexDocuments); v != 42 {
		t.Errorf("expected index_documents 42, got %f", v)
	}

	AnswerErrorsTotal.WithLabelValues("openai", "gpt-4o-mini", "timeout").Inc()
	if n := testutil.CollectAndCount(AnswerErrorsTotal); n == 0 {
		t.Error("expected answer_errors_total series")
	}
}
