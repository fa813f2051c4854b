package platform

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type namedStrategy string

func (n namedStrategy) Name() string { return string(n) }
func (n namedStrategy) Execute(context.Context, Request) (*Page, error) {
	return &Page{Strategy: string(n)}, nil
}

func TestBuildKeepsOrder(t *testing.T) {
	Register("test-a", func(StrategyOptions) Strategy { return namedStrategy("test-a") })
	Register("test-b", func(StrategyOptions) Strategy { return namedStrategy("test-b") })

	got, err := Build([]string{"test-b", "test-a"}, StrategyOptions{Client: http.DefaultClient})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "test-b", got[0].Name())
	require.Equal(t, "test-a", got[1].Name())

	_, err = Build([]string{"missing"}, StrategyOptions{Client: http.DefaultClient})
	require.ErrorContains(t, err, `"missing" not registered`)
}

func TestReportProgress(t *testing.T) {
	var got []string
	ctx := WithProgress(context.Background(), func(msg string) { got = append(got, msg) })

	ReportProgress(ctx, "one")
	ReportProgress(context.Background(), "ignored")
	ReportProgress(ctx, "two")

	require.Equal(t, []string{"one", "two"}, got)
}
