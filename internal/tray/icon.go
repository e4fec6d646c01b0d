package tray

// iconData is a 16x16 PNG used for the tray icon on all platforms.
var iconData = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x2e, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x60, 0x80, 0x02, 0x93,
	0x8a, 0x6f, 0x0d, 0xa4, 0x60, 0x06, 0x74, 0x00, 0x14, 0xfc, 0x4f, 0x0a,
	0x66, 0x40, 0xb3, 0x99, 0x24, 0xcd, 0x48, 0xb8, 0x61, 0xd4, 0x80, 0x51,
	0x03, 0x86, 0x8b, 0x01, 0x14, 0x67, 0x26, 0x4a, 0xb3, 0x33, 0x00, 0x50,
	0x70, 0x5f, 0x3f, 0xf6, 0x09, 0x97, 0x58, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
