package hardware

import (
	"fmt"
	"math/bits"
	"strings"
	"time"

	apperrors "github.com/wfunc/busmon/internal/errors"
)

// CallType 呼叫字节类型
type CallType int

const (
	CallUnknown            CallType = iota
	CallNormalRequest               // P10A AAAA 请求设备发送
	CallRequestAcknowledge          // P00A AAAA 请求确认/重发
	CallReserved                    // P01A AAAA 保留
	CallMessage                     // P11A AAAA 后续有头字节和数据
	CallBroadcastFeedback           // P010 0000 广播反馈
	CallBroadcast                   // P110 0000 广播消息
)

var callTypeNames = map[CallType]string{
	CallUnknown:            "Unknown",
	CallNormalRequest:      "NormalRequest",
	CallRequestAcknowledge: "RequestAcknowledge",
	CallReserved:           "Reserved",
	CallMessage:            "Message",
	CallBroadcastFeedback:  "BroadcastFeedback",
	CallBroadcast:          "Broadcast",
}

func (t CallType) String() string {
	if name, ok := callTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CallType(%d)", int(t))
}

// CallByte 呼叫字节解析结果
type CallByte struct {
	Raw        byte
	Type       CallType
	Address    uint8
	Broadcast  bool
	ParityOK   bool
	Candidates []MessageDefinition // 仍可能匹配的消息定义
	ReceivedAt time.Time
}

// ParityOK 偶校验：整个字节中1的个数为偶数
func ParityOK(b byte) bool {
	return bits.OnesCount8(b)%2 == 0
}

// ClassifyCall 解析呼叫字节。校验失败时返回ErrParity，Type为CallUnknown。
// 地址0只有广播定义，CC为00或10时没有候选，Type为CallUnknown。
func ClassifyCall(b byte, receivedAt time.Time) (CallByte, error) {
	c := CallByte{
		Raw:        b,
		Address:    DeviceAddress(b),
		ParityOK:   ParityOK(b),
		ReceivedAt: receivedAt,
	}
	if !c.ParityOK {
		return c, apperrors.Newf(apperrors.ErrParity, "call byte 0x%02X", b)
	}

	c.Broadcast = c.Address == 0
	c.Candidates = FilterCall(b)
	switch CommandField(b) >> 5 {
	case 0b10:
		if !c.Broadcast {
			c.Type = CallNormalRequest
		}
	case 0b00:
		if !c.Broadcast {
			c.Type = CallRequestAcknowledge
		}
	case 0b01:
		if c.Broadcast {
			c.Type = CallBroadcastFeedback
		} else {
			c.Type = CallReserved
		}
	case 0b11:
		if c.Broadcast {
			c.Type = CallBroadcast
		} else {
			c.Type = CallMessage
		}
	}

	return c, nil
}

// FormatCall 格式化呼叫字节输出行
func FormatCall(c CallByte) string {
	return fmt.Sprintf("Call: %s Address: %d Raw: 0x%02X Candidates: %s",
		c.Type, c.Address, c.Raw, formatCandidates(c.Candidates))
}

func formatCandidates(defs []MessageDefinition) string {
	if len(defs) == 0 {
		return "none"
	}
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = string(d.Name)
	}
	return strings.Join(names, ",")
}

// FormatParityError 格式化校验错误输出行
func FormatParityError(raw byte) string {
	return fmt.Sprintf("Parity error: 0x%02X", raw)
}
