package anoncreds

import (
	"github.com/privacybydesign/anoncreds/revocation"
	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.StandardLogger()
	revocation.Logger = Logger
}
