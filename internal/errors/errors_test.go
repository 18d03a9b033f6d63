package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrDeviceOffline)
	suite.NotNil(err)
	suite.Equal(ErrDeviceOffline, err.Code)
	suite.Equal("device offline", err.Message)
	suite.Empty(err.Details)

	err = New(ErrSerialPortOpen, "/dev/ttyUSB0", "baud 62500")
	suite.Equal("/dev/ttyUSB0; baud 62500", err.Details)
	suite.Equal("[3000] serial port open failed: /dev/ttyUSB0; baud 62500", err.Error())
}

func (suite *ErrorsTestSuite) TestNewUnknownCode() {
	err := New(ErrorCode(42))
	suite.Equal("unknown error", err.Message)
}

func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrParity, "byte 0x%02X", 0x41)
	suite.Equal(ErrParity, err.Code)
	suite.Equal("byte 0x41", err.Details)
}

func (suite *ErrorsTestSuite) TestWrap() {
	cause := errors.New("no such file or directory")
	wrapped := Wrap(cause, ErrSerialPortOpen)
	suite.Equal(ErrSerialPortOpen, wrapped.Code)
	suite.Equal("no such file or directory", wrapped.Details)
	suite.Equal(cause, wrapped.Cause)
	suite.True(errors.Is(wrapped, cause))

	suite.Nil(Wrap(nil, ErrUnknown))

	// 已有AppError保留原始错误码
	inner := New(ErrDeviceOffline, "gone")
	outer := Wrap(inner, ErrSerialPortRead, "extra")
	suite.Equal(ErrDeviceOffline, outer.Code)
	suite.Equal("extra; gone", outer.Details)
}

func (suite *ErrorsTestSuite) TestDiagnostic() {
	suite.Equal("boom", Wrap(errors.New("boom"), ErrSerialPortRead, "ctx").Diagnostic())
	suite.Equal("detail", New(ErrSerialPortRead, "detail").Diagnostic())
	suite.Equal("serial port read failed", New(ErrSerialPortRead).Diagnostic())
}

func (suite *ErrorsTestSuite) TestIsAndGetCode() {
	err := New(ErrParity)
	suite.True(Is(err, ErrParity))
	suite.False(Is(err, ErrSerialPortOpen))
	suite.False(Is(nil, ErrParity))
	suite.False(Is(errors.New("plain"), ErrParity))

	suite.Equal(ErrParity, GetCode(err))
	suite.Equal(ErrorCode(0), GetCode(nil))
	suite.Equal(ErrUnknown, GetCode(errors.New("plain")))
}

func (suite *ErrorsTestSuite) TestIsCritical() {
	suite.True(IsCritical(New(ErrSerialPortOpen)))
	suite.True(IsCritical(New(ErrSerialPortRead)))
	suite.True(IsCritical(New(ErrDeviceOffline)))
	suite.True(IsCritical(New(ErrConfigLoad)))
	suite.True(IsCritical(New(ErrConfigParse)))
	suite.True(IsCritical(New(ErrConfigValidate)))
	suite.False(IsCritical(New(ErrParity)))
	suite.False(IsCritical(errors.New("plain")))
	suite.False(IsCritical(nil))
}

func (suite *ErrorsTestSuite) TestStack() {
	err := New(ErrUnknown)
	suite.NotEmpty(err.Stack)
	suite.Contains(err.GetStack(), "1. ")
	suite.Empty((&AppError{}).GetStack())
}

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
