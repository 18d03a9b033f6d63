package hardware

// MessageName 中心站消息名称
type MessageName string

const (
	MsgNormalRequest      MessageName = "NormalRequest"
	MsgRequestAcknowledge MessageName = "RequestAcknowledge"
	MsgTBD                MessageName = "TBD"

	MsgBroadcastAllOn            MessageName = "BroadcastAllOn"
	MsgBroadcastAllOff           MessageName = "BroadcastAllOff"
	MsgBroadcastAllLocoOff       MessageName = "BroadcastAllLocoOff"
	MsgBroadcastProgrammingMode  MessageName = "BroadcastProgrammingMode"
	MsgBroadcastFeedback         MessageName = "BroadcastFeedback"
	MsgBroadcastFeedbackExtended MessageName = "BroadcastFeedbackExtended"

	MsgServiceValueReport         MessageName = "ServiceValueReport"
	MsgSoftwareVersionReport23    MessageName = "SoftwareVersionReport23"
	MsgSoftwareVersionReport30    MessageName = "SoftwareVersionReport30"
	MsgStateLZ                    MessageName = "StateLZ"
	MsgExtendedVersionInformation MessageName = "ExtendedVersionInformation"
	MsgPoMEventReport             MessageName = "PoMEventReport"
	MsgModelTime                  MessageName = "ModelTime"
	MsgTransmissionError          MessageName = "TransmissionError"
	MsgLZBusy                     MessageName = "LZBusy"
	MsgCommandNotFound            MessageName = "CommandNotFound"
	MsgSwitchInfo                 MessageName = "SwitchInfo"
	MsgSwitchInfoExtended         MessageName = "SwitchInfoExtended"

	MsgLocoFreeV15                    MessageName = "LocoFreeV15"
	MsgLocoOccupiedV15                MessageName = "LocoOccupiedV15"
	MsgLocoFreeV23                    MessageName = "LocoFreeV23"
	MsgLocoOccupiedV23                MessageName = "LocoOccupiedV23"
	MsgLocoInfoNormalV30              MessageName = "LocoInfoNormalV30"
	MsgLocoFunctionStateUpperV36      MessageName = "LocoFunctionStateUpperV36"
	MsgLocoFunctionStateUpperUpperV40 MessageName = "LocoFunctionStateUpperUpperV40"
	MsgLocoInfoMultipleLocos          MessageName = "LocoInfoMultipleLocos"
	MsgLocoInfoMultipleLocosBase      MessageName = "LocoInfoMultipleLocosBase"
	MsgLocoInfoDoubleLocos            MessageName = "LocoInfoDoubleLocos"
	MsgLocoInUseV30                   MessageName = "LocoInUseV30"
	MsgLocoFunctionStateF0F12V30      MessageName = "LocoFunctionStateF0F12V30"
	MsgLocoFunctionStateF13F28V36     MessageName = "LocoFunctionStateF13F28V36"
	MsgLocoFunctionStateF29F68V40     MessageName = "LocoFunctionStateF29F68V40"
	MsgLocoInfoSearchV30              MessageName = "LocoInfoSearchV30"
	MsgLZErrorsV30                    MessageName = "LZErrorsV30"
)

// MessageDefinition 消息定义，呼叫字节只能确定CallValue和Broadcast两项
type MessageDefinition struct {
	Name        MessageName
	CallValue   uint8 // 呼叫字节的CC位
	CheckParity bool
	Broadcast   bool
	HasHeader   bool
	Header      byte
	DataBytes   int // -1 表示长度由头字节给出
}

func def(name MessageName, call uint8) MessageDefinition {
	return MessageDefinition{Name: name, CallValue: call, CheckParity: true}
}

func broadcast(name MessageName, call uint8, header byte, data int) MessageDefinition {
	return MessageDefinition{Name: name, CallValue: call, Broadcast: true, HasHeader: true, Header: header, DataBytes: data}
}

func message(name MessageName, header byte, data int) MessageDefinition {
	return MessageDefinition{Name: name, CallValue: 0b11, CheckParity: true, HasHeader: true, Header: header, DataBytes: data}
}

var definitions = func() []MessageDefinition {
	feedback := broadcast(MsgBroadcastFeedback, 0b01, 0b01000000, -1)
	feedback.CheckParity = true

	return []MessageDefinition{
		def(MsgNormalRequest, 0b10),
		def(MsgRequestAcknowledge, 0b00),
		def(MsgTBD, 0b01),

		broadcast(MsgBroadcastAllOn, 0b11, 0b01100001, 1),
		broadcast(MsgBroadcastAllOff, 0b11, 0b01100001, 1),
		broadcast(MsgBroadcastAllLocoOff, 0b11, 0b10000001, 2),
		broadcast(MsgBroadcastProgrammingMode, 0b11, 0b01100001, 2),
		feedback,
		broadcast(MsgBroadcastFeedbackExtended, 0b01, 0b01000011, 3),

		message(MsgServiceValueReport, 0b01100011, 3),
		message(MsgSoftwareVersionReport23, 0b01100010, 2),
		message(MsgSoftwareVersionReport30, 0b01100011, 3),
		message(MsgStateLZ, 0b01100010, 2),
		message(MsgExtendedVersionInformation, 0b01100111, 7),
		message(MsgPoMEventReport, 0b01100100, 4),
		message(MsgModelTime, 0b01100100, 4),
		message(MsgTransmissionError, 0b01100001, 1),
		message(MsgLZBusy, 0b01100001, 1),
		message(MsgCommandNotFound, 0b01100001, 1),
		message(MsgSwitchInfo, 0b01000010, 2),
		message(MsgSwitchInfoExtended, 0b01000011, 3),

		message(MsgLocoFreeV15, 0b10000011, 3),
		message(MsgLocoOccupiedV15, 0b10100011, 3),
		message(MsgLocoFreeV23, 0b10000100, 4),
		message(MsgLocoOccupiedV23, 0b10100100, 4),
		message(MsgLocoInfoNormalV30, 0b11100100, 3),
		message(MsgLocoFunctionStateUpperV36, 0b11100011, 2),
		message(MsgLocoFunctionStateUpperUpperV40, 0b11100110, 5),
		message(MsgLocoInfoMultipleLocos, 0b11100101, 4),
		message(MsgLocoInfoMultipleLocosBase, 0b11100010, 1),
		message(MsgLocoInfoDoubleLocos, 0b11100110, 5),
		message(MsgLocoInUseV30, 0b11100011, 2),
		message(MsgLocoFunctionStateF0F12V30, 0b11100011, 2),
		message(MsgLocoFunctionStateF13F28V36, 0b11100100, 3),
		message(MsgLocoFunctionStateF29F68V40, 0b11100110, 5),
		message(MsgLocoInfoSearchV30, 0b11100011, 2),
		message(MsgLZErrorsV30, 0b11100001, 0),
	}
}()

// Definitions 返回全部消息定义的副本
func Definitions() []MessageDefinition {
	out := make([]MessageDefinition, len(definitions))
	copy(out, definitions)
	return out
}

// FilterCall 按呼叫字节筛选可能的消息定义。
// 校验失败时没有候选；地址0只保留广播定义，其余地址只保留非广播定义，再按CC位匹配。
func FilterCall(b byte) []MessageDefinition {
	if !ParityOK(b) {
		return nil
	}

	isBroadcast := DeviceAddress(b) == 0
	call := CommandField(b) >> 5

	var out []MessageDefinition
	for _, d := range definitions {
		if d.Broadcast != isBroadcast || d.CallValue != call {
			continue
		}
		out = append(out, d)
	}
	return out
}
