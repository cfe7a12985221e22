package emit

import "encoding/binary"

// WriteELF wraps code in a minimal, statically-linked ELF32 RISC-V
// executable: one PT_LOAD segment covering the whole file, entry
// point at the module's Entry symbol. It exists purely so `lpc-cli
// -dump-elf` output can be inspected with any off-the-shelf ELF
// reader; internal/riscv32 and internal/emu never read this format
// back, so hand-rolling the handful of header fields with
// encoding/binary is simpler than adopting a write-capable ELF
// library the rest of the toolchain has no other use for.
func WriteELF(code []byte, entryOffset int) []byte {
	const (
		ehsize    = 52
		phsize    = 32
		loadAddr  = 0x10000
		machRISCV = 243
	)

	fileSize := ehsize + phsize + len(code)
	buf := make([]byte, fileSize)

	copy(buf[0:4], []byte{0x7f, 'E', 'L', 'F'})
	buf[4] = 1 // ELFCLASS32
	buf[5] = 1 // ELFDATA2LSB
	buf[6] = 1 // EV_CURRENT
	// remaining e_ident bytes (OSABI, ABIVERSION, padding) stay zero

	le := binary.LittleEndian
	le.PutUint16(buf[16:], 2)                          // e_type = ET_EXEC
	le.PutUint16(buf[18:], machRISCV)                  // e_machine
	le.PutUint32(buf[20:], 1)                           // e_version
	le.PutUint32(buf[24:], uint32(loadAddr+ehsize+phsize+entryOffset)) // e_entry
	le.PutUint32(buf[28:], ehsize)                      // e_phoff
	le.PutUint32(buf[32:], 0)                           // e_shoff
	le.PutUint32(buf[36:], 0)                           // e_flags
	le.PutUint16(buf[40:], ehsize)                      // e_ehsize
	le.PutUint16(buf[42:], phsize)                      // e_phentsize
	le.PutUint16(buf[44:], 1)                           // e_phnum
	le.PutUint16(buf[46:], 0)                           // e_shentsize
	le.PutUint16(buf[48:], 0)                           // e_shnum
	le.PutUint16(buf[50:], 0)                           // e_shstrndx

	ph := buf[ehsize:]
	le.PutUint32(ph[0:], 1)                  // p_type = PT_LOAD
	le.PutUint32(ph[4:], 0)                  // p_offset
	le.PutUint32(ph[8:], loadAddr)           // p_vaddr
	le.PutUint32(ph[12:], loadAddr)          // p_paddr
	le.PutUint32(ph[16:], uint32(fileSize))  // p_filesz
	le.PutUint32(ph[20:], uint32(fileSize))  // p_memsz
	le.PutUint32(ph[24:], 5)                 // p_flags = PF_R|PF_X
	le.PutUint32(ph[28:], 0x1000)            // p_align

	copy(buf[ehsize+phsize:], code)
	return buf
}
