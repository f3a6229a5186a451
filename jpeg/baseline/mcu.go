package baseline

import "github.com/cocosip/pimjpeg/jpeg/common"

// decodeBlock decodes one 8x8 block for one component: a DC coefficient
// relative to dcPred, followed by a run-length/size coded AC sequence,
// dequantized and de-zigzagged into block (natural order, 64 entries).
// dcPred is updated in place with the new running DC value (undequantized).
func decodeBlock(br *common.BitReader, dcTable, acTable *common.HuffmanTable, q *QuantTable, dcPred *int, block *[64]int32) error {
	dcDec := common.NewHuffmanDecoder(br)

	size, err := dcDec.Decode(dcTable)
	if err != nil {
		return err
	}
	if size > 11 {
		return common.NewError(common.KindInvalidDCLength, "DC coefficient size exceeds 11 bits")
	}

	diff, err := dcDec.ReceiveExtend(int(size))
	if err != nil {
		return err
	}
	*dcPred += diff
	block[0] = int32(*dcPred) * q.Values[0]

	acDec := common.NewHuffmanDecoder(br)
	k := 1
	for k < 64 {
		rs, err := acDec.Decode(acTable)
		if err != nil {
			return err
		}
		run := int(rs >> 4)
		size := int(rs & 0x0F)

		if size == 0 {
			if run == 15 {
				// ZRL: 16 zero coefficients.
				for n := 0; n < 16 && k < 64; n++ {
					block[common.ZigZag[k]] = 0
					k++
				}
				continue
			}
			// EOB: remaining coefficients are zero.
			for ; k < 64; k++ {
				block[common.ZigZag[k]] = 0
			}
			break
		}

		k += run
		if k >= 64 {
			return common.NewError(common.KindRunOverflow, "AC zero run advanced past coefficient 63")
		}

		val, err := acDec.ReceiveExtend(size)
		if err != nil {
			return err
		}
		block[common.ZigZag[k]] = int32(val) * q.Values[common.ZigZag[k]]
		k++
	}

	return nil
}
