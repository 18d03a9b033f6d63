package hardware

import "fmt"

// 状态字节位定义: P CC AAAAA
const (
	CommandMask byte = 0b01100000 // 命令字段 (bit 5-6)
	AddressMask byte = 0b00011111 // 设备地址 (bit 0-4)
	ParityBit   byte = 0b10000000 // 校验位 (bit 7)

	// MatchCommand 需要打印的命令值。与原始工具保持一致，按数值64比较
	MatchCommand byte = 0b1000000

	MaxAddress = 31
)

// Match 命中的字节解码结果
type Match struct {
	Command byte
	Address uint8
}

// CommandField 提取命令字段（0x00/0x20/0x40/0x60）
func CommandField(b byte) byte {
	return b & CommandMask
}

// DeviceAddress 提取5位设备地址（0-31）
func DeviceAddress(b byte) uint8 {
	return b & AddressMask
}

// DecodeByte 解码单个字节，命令字段等于MatchCommand时返回命中结果
func DecodeByte(b byte) (Match, bool) {
	command := CommandField(b)
	if command != MatchCommand {
		return Match{}, false
	}
	return Match{Command: command, Address: DeviceAddress(b)}, true
}

// BinaryAddress 5位补零的二进制地址
func BinaryAddress(addr uint8) string {
	return fmt.Sprintf("%05b", addr&AddressMask)
}

// FormatMatch 格式化输出行
func FormatMatch(m Match) string {
	return fmt.Sprintf("Binary: %s Decimal: %d", BinaryAddress(m.Address), m.Address)
}
