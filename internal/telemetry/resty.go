package telemetry

import (
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentResty opens a client span around every request made by client.
// Header values are not recorded since they carry credentials.
func InstrumentResty(client *resty.Client) {
	tracer := Tracer()

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), req.Method, trace.WithSpanKind(trace.SpanKindClient))
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		span := trace.SpanFromContext(resp.Request.Context())
		span.SetAttributes(
			attribute.String("http.request.method", resp.Request.Method),
			attribute.String("url.full", resp.Request.URL),
			attribute.Int("http.response.status_code", resp.StatusCode()),
		)
		if resp.IsError() {
			span.SetStatus(codes.Error, resp.Status())
		}
		span.End()
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
	})
}
