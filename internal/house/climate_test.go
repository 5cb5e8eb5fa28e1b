package house

import "testing"

func TestRegulate(t *testing.T) {
	tests := []struct {
		name string
		in   Climate
		want Climate
	}{
		{
			name: "below target heats and forces dehumidifier off",
			in:   Climate{TargetTemp: 72, CurrentTemp: 68, Humidity: 60, DehumidifierOn: true, ChillerOn: true, Mode: HVACCool},
			want: Climate{TargetTemp: 72, CurrentTemp: 69, Humidity: 60, HeaterOn: true, Mode: HVACHeat},
		},
		{
			name: "above target cools",
			in:   Climate{TargetTemp: 70, CurrentTemp: 75, Humidity: 40, HeaterOn: true, Mode: HVACHeat},
			want: Climate{TargetTemp: 70, CurrentTemp: 74, Humidity: 40, ChillerOn: true, Mode: HVACCool},
		},
		{
			name: "at target turns both off and keeps mode",
			in:   Climate{TargetTemp: 70, CurrentTemp: 70, Humidity: 40, ChillerOn: true, Mode: HVACCool},
			want: Climate{TargetTemp: 70, CurrentTemp: 70, Humidity: 40, Mode: HVACCool},
		},
		{
			name: "dehumidifier lowers humidity above band",
			in:   Climate{TargetTemp: 70, CurrentTemp: 72, Humidity: 65, DehumidifierOn: true},
			want: Climate{TargetTemp: 70, CurrentTemp: 71, Humidity: 64, ChillerOn: true, DehumidifierOn: true, Mode: HVACCool},
		},
		{
			name: "dehumidifier raises humidity below band",
			in:   Climate{TargetTemp: 70, CurrentTemp: 70, Humidity: 10, DehumidifierOn: true, Mode: HVACHeat},
			want: Climate{TargetTemp: 70, CurrentTemp: 70, Humidity: 11, DehumidifierOn: true, Mode: HVACHeat},
		},
		{
			name: "dehumidifier idle inside band",
			in:   Climate{TargetTemp: 70, CurrentTemp: 70, Humidity: 40, DehumidifierOn: true, Mode: HVACHeat},
			want: Climate{TargetTemp: 70, CurrentTemp: 70, Humidity: 40, DehumidifierOn: true, Mode: HVACHeat},
		},
		{
			name: "humidity clamped",
			in:   Climate{TargetTemp: 70, CurrentTemp: 70, Humidity: 120, Mode: HVACHeat},
			want: Climate{TargetTemp: 70, CurrentTemp: 70, Humidity: 100, Mode: HVACHeat},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Regulate(tt.in); got != tt.want {
				t.Errorf("Regulate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRegulate_ConvergesOneDegreePerCycle(t *testing.T) {
	c := Climate{TargetTemp: 72, CurrentTemp: 68, Humidity: 45, Mode: HVACHeat}
	for i := 1; i <= 4; i++ {
		c = Regulate(c)
		if c.CurrentTemp != 68+i {
			t.Fatalf("cycle %d: CurrentTemp = %d, want %d", i, c.CurrentTemp, 68+i)
		}
	}
	c = Regulate(c)
	if c.HeaterOn || c.ChillerOn || c.CurrentTemp != 72 {
		t.Errorf("after convergence = %+v, want both off at 72", c)
	}
}
