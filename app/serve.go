package app

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/targodan/go-errors"
	"github.com/urfave/cli/v2"

	"github.com/kribakarans/pmap"
	"github.com/kribakarans/pmap/output"
	"github.com/kribakarans/pmap/procmaps"
)

var serveFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "listen",
		Aliases: []string{"a"},
		Usage:   "address to listen on",
		Value:   "localhost:8080",
	},
	&cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable verbose HTTP logging",
	},
	&cli.StringFlag{
		Name:  "pc",
		Usage: "program counter address at crash time (hex)",
	},
	&cli.StringFlag{
		Name:  "lr",
		Usage: "link register address at crash time (hex)",
	},
	&cli.StringFlag{
		Name:  "sp",
		Usage: "stack pointer address at crash time (hex)",
	},
	&cli.StringFlag{
		Name:  "fp",
		Usage: "frame pointer address at crash time (hex)",
	},
}

// newReportRouter builds the gin router serving the rendered HTML
// report on / and the raw report data on /api/report.
func newReportRouter(data *pmap.ReportData) (*gin.Engine, error) {
	html := &bytes.Buffer{}
	err := output.WriteHTML(html, data)
	if err != nil {
		return nil, err
	}
	page := html.Bytes()

	router := gin.Default()
	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
	router.GET("/api/report", func(c *gin.Context) {
		c.JSON(http.StatusOK, data)
	})
	return router, nil
}

func serve(c *cli.Context) error {
	err := initAppAction(c)
	if err != nil {
		return err
	}

	if c.NArg() != 1 {
		return errors.Newf("expected exactly one argument <mapsfile>, got %d", c.NArg())
	}

	if c.Bool("verbose") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	crashCtx, err := crashContextFromArgs(c)
	if err != nil {
		return err
	}

	space, err := procmaps.ParseFile(c.Args().First())
	if err != nil {
		return err
	}
	data := pmap.Assemble(space, 0, crashCtx)

	router, err := newReportRouter(data)
	if err != nil {
		return err
	}

	logrus.WithField("address", c.String("listen")).Info("Serving report.")
	return router.Run(c.String("listen"))
}
