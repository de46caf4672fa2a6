package mapping

// sampleConfig mirrors a production data configuration with one bank per mapping type.
const sampleConfig = `
file_pattern: '(\w+)_(\w+)_(stm|sec)_\d{8}\.csv'
mapping:
  stm:
    BankA:
      csv_separator: ';'
      original_fields:
        Account: acc_number
        Date: dt
        Amount: sum
        DC: dc
        Reference: ref
      desired_fields: [surrogate_key, bank_name, acc_type, acc_name, dt, year, ym, sum, file_name, processed_at]
      surrogate_key_columns: [acc_number, dt, sum, ref]
      date_format: '%Y-%m-%d'
      accounts:
        40817: Main
        '0042': Savings
      debit_multiplier:
        D: -1
        C: 1
  sec:
    BankB:
      csv_separator: ','
      encoding: windows-1252
      original_fields:
        ISIN: isin
        Sent: send_dt
        Effective: effect_dt
      desired_fields: [surrogate_key, isin, send_dt, effect_dt, effect_year, effect_ym]
      surrogate_key_columns: [isin, send_dt]
      date_format: '%d.%m.%Y'
`
