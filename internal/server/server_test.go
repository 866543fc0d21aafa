package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"reel/internal/config"
)

func TestServerWithoutMongo(t *testing.T) {
	Convey("未配置 MongoDB 时只提供健康检查", t, func() {
		srv, err := New(&config.Config{Server: config.ServerConfig{Mode: "test", Port: 8080}})
		So(err, ShouldBeNil)

		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		So(w.Code, ShouldEqual, http.StatusOK)
		So(w.Header().Get("X-Request-ID"), ShouldNotBeEmpty)

		w = httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		So(w.Code, ShouldEqual, http.StatusOK)

		w = httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/scripts", nil))
		So(w.Code, ShouldEqual, http.StatusNotFound)
	})
}
