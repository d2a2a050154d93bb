package binance

import (
	"testing"
)

func TestParseKline(t *testing.T) {
	tests := []struct {
		name    string
		kline   []interface{}
		wantErr bool
	}{
		{
			name: "Kline válida",
			kline: []interface{}{
				float64(1700000000000), "50000.10", "50500.00", "49800.50", "50250.75", "1234.56",
			},
		},
		{
			name: "Precio con tipo inesperado",
			kline: []interface{}{
				float64(1700000000000), 50000.10, "50500.00", "49800.50", "50250.75", "1234.56",
			},
			wantErr: true,
		},
		{
			name: "Precio no numérico",
			kline: []interface{}{
				float64(1700000000000), "not-a-price", "50500.00", "49800.50", "50250.75", "1234.56",
			},
			wantErr: true,
		},
		{
			name: "Timestamp con tipo inesperado",
			kline: []interface{}{
				"1700000000000", "50000.10", "50500.00", "49800.50", "50250.75", "1234.56",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candle, err := parseKline(tt.kline)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseKline() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if candle.Open != 50000.10 || candle.High != 50500.00 ||
				candle.Low != 49800.50 || candle.Close != 50250.75 {
				t.Errorf("candle = %+v, want parsed OHLC prices", candle)
			}
			if candle.Volume != 1234 {
				t.Errorf("Volume = %v, want 1234", candle.Volume)
			}
			if candle.Datetime == "" {
				t.Error("Datetime is empty")
			}
		})
	}
}
